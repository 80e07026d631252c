package apiserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"cinematch/internal/models"
	"cinematch/internal/tmdb"

	"github.com/gorilla/mux"
)

// discoverParams are the TMDB discover filters the proxy forwards verbatim.
var discoverParams = []string{
	"with_genres", "without_genres", "sort_by", "page", "year",
	"primary_release_year", "first_air_date_year", "vote_average.gte",
	"vote_count.gte", "with_watch_providers", "watch_region", "language",
}

// MediaHandler proxies title metadata lookups to TMDB. Responses are relayed
// in the provider's native JSON shape.
type MediaHandler struct {
	tmdbClient *tmdb.Client
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(tmdbClient *tmdb.Client) *MediaHandler {
	return &MediaHandler{tmdbClient: tmdbClient}
}

// Search handles GET /media/search?q=...&type=movie|tv&page=N.
func (h *MediaHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSONError(w, "missing search query parameter q", http.StatusBadRequest)
		return
	}

	mediaType := models.MediaType(r.URL.Query().Get("type"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	raw, err := h.tmdbClient.Search(r.Context(), mediaType, query, page)
	if err != nil {
		writeUpstreamError(w, err, "media search failed")
		return
	}
	relayJSON(w, raw)
}

// Discover handles GET /media/discover/{mediaType} with filter params.
func (h *MediaHandler) Discover(w http.ResponseWriter, r *http.Request) {
	mediaType, ok := pathMediaType(r)
	if !ok {
		writeJSONError(w, "invalid media type", http.StatusBadRequest)
		return
	}

	params := url.Values{}
	for _, key := range discoverParams {
		if v := r.URL.Query().Get(key); v != "" {
			params.Set(key, v)
		}
	}

	raw, err := h.tmdbClient.Discover(r.Context(), mediaType, params)
	if err != nil {
		writeUpstreamError(w, err, "media discover failed")
		return
	}
	relayJSON(w, raw)
}

// Details handles GET /media/{mediaType}/{tmdbID}.
func (h *MediaHandler) Details(w http.ResponseWriter, r *http.Request) {
	mediaType, tmdbID, ok := pathTitle(r)
	if !ok {
		writeJSONError(w, "invalid media type or ID", http.StatusBadRequest)
		return
	}

	raw, err := h.tmdbClient.DetailsRaw(r.Context(), mediaType, tmdbID)
	if err != nil {
		writeUpstreamError(w, err, "media details failed")
		return
	}
	relayJSON(w, raw)
}

// WatchProviders handles GET /media/{mediaType}/{tmdbID}/watch-providers.
func (h *MediaHandler) WatchProviders(w http.ResponseWriter, r *http.Request) {
	mediaType, tmdbID, ok := pathTitle(r)
	if !ok {
		writeJSONError(w, "invalid media type or ID", http.StatusBadRequest)
		return
	}

	raw, err := h.tmdbClient.WatchProviders(r.Context(), mediaType, tmdbID)
	if err != nil {
		writeUpstreamError(w, err, "watch providers lookup failed")
		return
	}
	relayJSON(w, raw)
}

// Credits handles GET /media/{mediaType}/{tmdbID}/credits.
func (h *MediaHandler) Credits(w http.ResponseWriter, r *http.Request) {
	mediaType, tmdbID, ok := pathTitle(r)
	if !ok {
		writeJSONError(w, "invalid media type or ID", http.StatusBadRequest)
		return
	}

	raw, err := h.tmdbClient.Credits(r.Context(), mediaType, tmdbID)
	if err != nil {
		writeUpstreamError(w, err, "credits lookup failed")
		return
	}
	relayJSON(w, raw)
}

func pathMediaType(r *http.Request) (models.MediaType, bool) {
	mt := models.MediaType(mux.Vars(r)["mediaType"])
	return mt, mt.Valid()
}

func pathTitle(r *http.Request) (models.MediaType, int, bool) {
	mediaType, ok := pathMediaType(r)
	if !ok {
		return "", 0, false
	}
	tmdbID, err := strconv.Atoi(mux.Vars(r)["tmdbID"])
	if err != nil || tmdbID <= 0 {
		return "", 0, false
	}
	return mediaType, tmdbID, true
}

// relayJSON forwards a TMDB response body without re-encoding it.
func relayJSON(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// writeUpstreamError distinguishes TMDB rejections from transport failures.
// Provider 404s pass through; other provider rejections surface the
// provider's message at 500, and transport failures get the generic message.
func writeUpstreamError(w http.ResponseWriter, err error, fallback string) {
	var upstream *tmdb.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.StatusCode == http.StatusNotFound {
			writeJSONError(w, "title not found", http.StatusNotFound)
			return
		}
		log.Printf("TMDB error (%d): %s", upstream.StatusCode, upstream.Body)
		if msg := upstream.Message(); msg != "" {
			writeJSONError(w, fmt.Sprintf("%s: %s", fallback, msg), http.StatusInternalServerError)
			return
		}
		writeJSONError(w, fallback, http.StatusInternalServerError)
		return
	}
	log.Printf("%s: %v", fallback, err)
	writeJSONError(w, fallback, http.StatusInternalServerError)
}
