package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinematch/internal/models"
	"cinematch/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockListService struct {
	mock.Mock
}

func (m *mockListService) CreateList(ctx context.Context, userID uint, listType models.ListType, name string, isPublic bool) (*models.List, error) {
	args := m.Called(ctx, userID, listType, name, isPublic)
	if l := args.Get(0); l != nil {
		return l.(*models.List), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListService) GetList(ctx context.Context, requesterID, listID uint) (*models.List, error) {
	args := m.Called(ctx, requesterID, listID)
	if l := args.Get(0); l != nil {
		return l.(*models.List), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListService) GetUserLists(ctx context.Context, requesterID, ownerID uint) ([]models.List, error) {
	args := m.Called(ctx, requesterID, ownerID)
	if l := args.Get(0); l != nil {
		return l.([]models.List), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListService) UpdateList(ctx context.Context, userID, listID uint, name *string, isPublic *bool) (*models.List, error) {
	args := m.Called(ctx, userID, listID, name, isPublic)
	if l := args.Get(0); l != nil {
		return l.(*models.List), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListService) DeleteList(ctx context.Context, userID, listID uint) error {
	return m.Called(ctx, userID, listID).Error(0)
}

func (m *mockListService) AddItem(ctx context.Context, userID, listID uint, item *models.ListItem) (*models.ListItem, error) {
	args := m.Called(ctx, userID, listID, item)
	if i := args.Get(0); i != nil {
		return i.(*models.ListItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListService) RemoveItem(ctx context.Context, userID, listID, itemID uint) error {
	return m.Called(ctx, userID, listID, itemID).Error(0)
}

func (m *mockListService) GetWishlist(ctx context.Context, requesterID, ownerID uint) ([]models.ListItem, error) {
	args := m.Called(ctx, requesterID, ownerID)
	if i := args.Get(0); i != nil {
		return i.([]models.ListItem), args.Error(1)
	}
	return nil, args.Error(1)
}

var _ services.ListService = (*mockListService)(nil)

func publicListRouter(h *ListHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/lists/{listID:[0-9]+}", h.GetPublicList).Methods(http.MethodGet)
	return r
}

func TestGetPublicListAnonymous(t *testing.T) {
	svc := new(mockListService)
	public := &models.List{UserID: 2, Type: models.RecommendationsType, Name: "Recs", IsPublic: true}
	public.ID = 10
	svc.On("GetList", mock.Anything, uint(0), uint(10)).Return(public, nil)

	rec := httptest.NewRecorder()
	publicListRouter(NewListHandler(svc)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lists/10", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Name     string `json:"name"`
		IsPublic bool   `json:"is_public"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Recs", resp.Name)
	assert.True(t, resp.IsPublic)
	svc.AssertExpectations(t)
}

func TestGetPublicListAnonymousDeniedPrivate(t *testing.T) {
	svc := new(mockListService)
	svc.On("GetList", mock.Anything, uint(0), uint(10)).Return(nil, services.ErrListForbidden)

	rec := httptest.NewRecorder()
	publicListRouter(NewListHandler(svc)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lists/10", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetPublicListNotFound(t *testing.T) {
	svc := new(mockListService)
	svc.On("GetList", mock.Anything, uint(0), uint(10)).Return(nil, services.ErrListNotFound)

	rec := httptest.NewRecorder()
	publicListRouter(NewListHandler(svc)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lists/10", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
