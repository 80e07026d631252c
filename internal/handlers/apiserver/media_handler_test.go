package apiserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinematch/internal/config"
	"cinematch/internal/tmdb"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaTestRouter(baseURL string) *mux.Router {
	client := tmdb.NewClient(config.TMDBConfig{
		BaseURL:         baseURL,
		ReadAccessToken: "test-token",
		Timeout:         2 * time.Second,
	})
	h := NewMediaHandler(client)

	r := mux.NewRouter()
	r.HandleFunc("/media/{mediaType}/{tmdbID:[0-9]+}", h.Details).Methods(http.MethodGet)
	return r
}

func TestMediaDetailsRelaysProviderJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":603,"title":"The Matrix"}`))
	}))
	defer srv.Close()

	rec := httptest.NewRecorder()
	mediaTestRouter(srv.URL).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/movie/603", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":603,"title":"The Matrix"}`, rec.Body.String())
}

func TestMediaDetailsUnknownTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_message":"The resource you requested could not be found."}`))
	}))
	defer srv.Close()

	rec := httptest.NewRecorder()
	mediaTestRouter(srv.URL).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/movie/999999999", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"title not found"}`, rec.Body.String())
}

func TestMediaDetailsProviderFailureSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status_message":"The API is undergoing maintenance."}`))
	}))
	defer srv.Close()

	rec := httptest.NewRecorder()
	mediaTestRouter(srv.URL).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/movie/603", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"media details failed: The API is undergoing maintenance."}`, rec.Body.String())
}

func TestMediaDetailsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	rec := httptest.NewRecorder()
	mediaTestRouter(srv.URL).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/movie/603", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"media details failed"}`, rec.Body.String())
}
