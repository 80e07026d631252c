package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinematch/internal/middleware"
	"cinematch/internal/models"
	"cinematch/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMatchService struct {
	mock.Mock
}

func (m *mockMatchService) FindMatches(ctx context.Context, userID uint) ([]*models.Match, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.([]*models.Match), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchService) CreateMatch(ctx context.Context, userID uint, tmdbID int, mediaType models.MediaType, title, posterPath string, friendIDs []uint) (*models.WatchParty, error) {
	args := m.Called(ctx, userID, tmdbID, mediaType, title, posterPath, friendIDs)
	if r := args.Get(0); r != nil {
		return r.(*models.WatchParty), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchService) Respond(ctx context.Context, userID, partyID uint, accept bool) (*models.WatchParty, error) {
	args := m.Called(ctx, userID, partyID, accept)
	if r := args.Get(0); r != nil {
		return r.(*models.WatchParty), args.Error(1)
	}
	return nil, args.Error(1)
}

var _ services.MatchService = (*mockMatchService)(nil)

func authedRequest(method, target string, body []byte, userID uint) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestFindMatchesHandler(t *testing.T) {
	svc := new(mockMatchService)
	svc.On("FindMatches", mock.Anything, uint(1)).Return([]*models.Match{
		{
			TMDBID:         603,
			MediaType:      models.MovieMedia,
			Title:          "The Matrix",
			MatchedFriends: []*models.UserBasicInfo{{ID: 2, Username: "ana"}},
		},
	}, nil)

	h := NewMatchHandler(svc)
	rec := httptest.NewRecorder()
	h.FindMatches(rec, authedRequest(http.MethodGet, "/api/v1/matches", nil, 1))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Matches []struct {
			TMDBID         int    `json:"tmdb_id"`
			MediaType      string `json:"media_type"`
			Title          string `json:"title"`
			MatchedFriends []struct {
				ID uint `json:"id"`
			} `json:"matched_friends"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, 603, resp.Matches[0].TMDBID)
	assert.Equal(t, "movie", resp.Matches[0].MediaType)
	require.Len(t, resp.Matches[0].MatchedFriends, 1)
	assert.Equal(t, uint(2), resp.Matches[0].MatchedFriends[0].ID)
}

func TestFindMatchesHandlerUnauthenticated(t *testing.T) {
	h := NewMatchHandler(new(mockMatchService))
	rec := httptest.NewRecorder()
	h.FindMatches(rec, httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestCreateMatchHandler(t *testing.T) {
	svc := new(mockMatchService)
	party := &models.WatchParty{
		CreatorID: 1,
		TMDBID:    603,
		MediaType: models.MovieMedia,
		Status:    models.WatchPartyPending,
	}
	svc.On("CreateMatch", mock.Anything, uint(1), 603, models.MovieMedia, "", "", []uint{2, 3}).Return(party, nil)

	body := []byte(`{"tmdb_id":603,"media_type":"movie","friend_ids":[2,3]}`)
	h := NewMatchHandler(svc)
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, authedRequest(http.MethodPost, "/api/v1/matches", body, 1))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		WatchParty struct {
			TMDBID int    `json:"tmdb_id"`
			Status string `json:"status"`
		} `json:"watch_party"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 603, resp.WatchParty.TMDBID)
	assert.Equal(t, "pending", resp.WatchParty.Status)
}

func TestCreateMatchHandlerItemNotInWishlist(t *testing.T) {
	svc := new(mockMatchService)
	svc.On("CreateMatch", mock.Anything, uint(1), 603, models.MovieMedia, "", "", []uint{2}).
		Return(nil, services.ErrItemNotInWishlist)

	body := []byte(`{"tmdb_id":603,"media_type":"movie","friend_ids":[2]}`)
	h := NewMatchHandler(svc)
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, authedRequest(http.MethodPost, "/api/v1/matches", body, 1))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Item not found in wishlist"}`, rec.Body.String())
}

func TestCreateMatchHandlerDuplicateParty(t *testing.T) {
	svc := new(mockMatchService)
	svc.On("CreateMatch", mock.Anything, uint(1), 603, models.MovieMedia, "", "", []uint{2}).
		Return(nil, services.ErrMatchAlreadyExists)

	body := []byte(`{"tmdb_id":603,"media_type":"movie","friend_ids":[2]}`)
	h := NewMatchHandler(svc)
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, authedRequest(http.MethodPost, "/api/v1/matches", body, 1))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRespondHandler(t *testing.T) {
	svc := new(mockMatchService)
	party := &models.WatchParty{Status: models.WatchPartyAccepted}
	svc.On("Respond", mock.Anything, uint(2), uint(5), true).Return(party, nil)

	router := mux.NewRouter()
	h := NewMatchHandler(svc)
	router.HandleFunc("/api/v1/matches/{partyID:[0-9]+}/respond", h.Respond).Methods(http.MethodPost)

	body := []byte(`{"action":"accept"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/matches/5/respond", body, 2))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.Status)
}

func TestRespondHandlerInvalidAction(t *testing.T) {
	svc := new(mockMatchService)
	router := mux.NewRouter()
	h := NewMatchHandler(svc)
	router.HandleFunc("/api/v1/matches/{partyID:[0-9]+}/respond", h.Respond).Methods(http.MethodPost)

	body := []byte(`{"action":"maybe"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/matches/5/respond", body, 2))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespondHandlerAlreadyResponded(t *testing.T) {
	svc := new(mockMatchService)
	svc.On("Respond", mock.Anything, uint(2), uint(5), false).Return(nil, services.ErrAlreadyResponded)

	router := mux.NewRouter()
	h := NewMatchHandler(svc)
	router.HandleFunc("/api/v1/matches/{partyID:[0-9]+}/respond", h.Respond).Methods(http.MethodPost)

	body := []byte(`{"action":"decline"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/matches/5/respond", body, 2))

	assert.Equal(t, http.StatusConflict, rec.Code)
}
