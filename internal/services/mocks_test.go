package services

import (
	"context"

	"cinematch/internal/models"
	"cinematch/internal/storage"
	"cinematch/internal/tmdb"

	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.User, error) {
	args := m.Called(ctx, query, currentUserID)
	if u := args.Get(0); u != nil {
		return u.([]models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetBasicInfoByID(ctx context.Context, id uint) (*models.UserBasicInfo, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.UserBasicInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	args := m.Called(ctx, userIDs)
	if u := args.Get(0); u != nil {
		return u.([]*models.UserBasicInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFriendshipRepo struct {
	mock.Mock
}

func (m *mockFriendshipRepo) Create(ctx context.Context, friendship *models.Friendship) error {
	return m.Called(ctx, friendship).Error(0)
}

func (m *mockFriendshipRepo) AreUsersFriends(ctx context.Context, userID1, userID2 uint) (bool, error) {
	args := m.Called(ctx, userID1, userID2)
	return args.Bool(0), args.Error(1)
}

func (m *mockFriendshipRepo) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	if ids := args.Get(0); ids != nil {
		return ids.([]uint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFriendshipRepo) Remove(ctx context.Context, userID1, userID2 uint) error {
	return m.Called(ctx, userID1, userID2).Error(0)
}

type mockFriendRequestRepo struct {
	mock.Mock
}

func (m *mockFriendRequestRepo) Create(ctx context.Context, request *models.FriendRequest) error {
	return m.Called(ctx, request).Error(0)
}

func (m *mockFriendRequestRepo) FindPendingRequest(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	args := m.Called(ctx, userID1, userID2)
	if r := args.Get(0); r != nil {
		return r.(*models.FriendRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFriendRequestRepo) GetRequestByID(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	args := m.Called(ctx, requestID)
	if r := args.Get(0); r != nil {
		return r.(*models.FriendRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFriendRequestRepo) UpdateRequestStatus(ctx context.Context, requestID uint, status models.FriendRequestStatus) error {
	return m.Called(ctx, requestID, status).Error(0)
}

func (m *mockFriendRequestRepo) GetPendingRequestsForUser(ctx context.Context, recipientUserID uint) ([]models.FriendRequest, error) {
	args := m.Called(ctx, recipientUserID)
	if r := args.Get(0); r != nil {
		return r.([]models.FriendRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFriendRequestRepo) GetPendingCounterpartIDs(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	if ids := args.Get(0); ids != nil {
		return ids.([]uint), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockListRepo struct {
	mock.Mock
}

func (m *mockListRepo) CreateList(ctx context.Context, list *models.List) error {
	return m.Called(ctx, list).Error(0)
}

func (m *mockListRepo) GetListByID(ctx context.Context, listID uint) (*models.List, error) {
	args := m.Called(ctx, listID)
	if l := args.Get(0); l != nil {
		return l.(*models.List), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListRepo) GetListWithItems(ctx context.Context, listID uint) (*models.List, error) {
	args := m.Called(ctx, listID)
	if l := args.Get(0); l != nil {
		return l.(*models.List), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListRepo) GetListsByUser(ctx context.Context, userID uint) ([]models.List, error) {
	args := m.Called(ctx, userID)
	if l := args.Get(0); l != nil {
		return l.([]models.List), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListRepo) UpdateList(ctx context.Context, list *models.List) error {
	return m.Called(ctx, list).Error(0)
}

func (m *mockListRepo) DeleteList(ctx context.Context, listID uint) error {
	return m.Called(ctx, listID).Error(0)
}

func (m *mockListRepo) AddItem(ctx context.Context, item *models.ListItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockListRepo) GetItemByID(ctx context.Context, itemID uint) (*models.ListItem, error) {
	args := m.Called(ctx, itemID)
	if i := args.Get(0); i != nil {
		return i.(*models.ListItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListRepo) RemoveItem(ctx context.Context, itemID uint) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *mockListRepo) FindItem(ctx context.Context, listID uint, tmdbID int, mediaType models.MediaType) (*models.ListItem, error) {
	args := m.Called(ctx, listID, tmdbID, mediaType)
	if i := args.Get(0); i != nil {
		return i.(*models.ListItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListRepo) GetWishlistItems(ctx context.Context, userID uint) ([]models.ListItem, error) {
	args := m.Called(ctx, userID)
	if i := args.Get(0); i != nil {
		return i.([]models.ListItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListRepo) GetWishlistItemsForUsers(ctx context.Context, userIDs []uint) ([]storage.OwnedItem, error) {
	args := m.Called(ctx, userIDs)
	if i := args.Get(0); i != nil {
		return i.([]storage.OwnedItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListRepo) FindWishlistItemForUser(ctx context.Context, userID uint, tmdbID int, mediaType models.MediaType) (*models.ListItem, error) {
	args := m.Called(ctx, userID, tmdbID, mediaType)
	if i := args.Get(0); i != nil {
		return i.(*models.ListItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListRepo) FindUsersWithWishlistKeys(ctx context.Context, keys []models.MediaKey, excludeUserIDs []uint, limit int) ([]uint, error) {
	args := m.Called(ctx, keys, excludeUserIDs, limit)
	if ids := args.Get(0); ids != nil {
		return ids.([]uint), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockWatchPartyRepo struct {
	mock.Mock
}

func (m *mockWatchPartyRepo) CreateParty(ctx context.Context, party *models.WatchParty) error {
	return m.Called(ctx, party).Error(0)
}

func (m *mockWatchPartyRepo) GetPartyByID(ctx context.Context, partyID uint) (*models.WatchParty, error) {
	args := m.Called(ctx, partyID)
	if p := args.Get(0); p != nil {
		return p.(*models.WatchParty), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWatchPartyRepo) GetPartyWithParticipants(ctx context.Context, partyID uint) (*models.WatchParty, error) {
	args := m.Called(ctx, partyID)
	if p := args.Get(0); p != nil {
		return p.(*models.WatchParty), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWatchPartyRepo) UpdatePartyStatus(ctx context.Context, partyID uint, status models.WatchPartyStatus) error {
	return m.Called(ctx, partyID, status).Error(0)
}

func (m *mockWatchPartyRepo) FindNonTerminalParty(ctx context.Context, creatorID uint, tmdbID int, mediaType models.MediaType) (*models.WatchParty, error) {
	args := m.Called(ctx, creatorID, tmdbID, mediaType)
	if p := args.Get(0); p != nil {
		return p.(*models.WatchParty), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWatchPartyRepo) ListNonTerminalByCreator(ctx context.Context, creatorID uint) ([]models.WatchParty, error) {
	args := m.Called(ctx, creatorID)
	if p := args.Get(0); p != nil {
		return p.([]models.WatchParty), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWatchPartyRepo) ListPartiesForUser(ctx context.Context, userID uint) ([]models.WatchParty, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.([]models.WatchParty), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWatchPartyRepo) CreateParticipant(ctx context.Context, participant *models.WatchPartyParticipant) error {
	return m.Called(ctx, participant).Error(0)
}

func (m *mockWatchPartyRepo) GetParticipant(ctx context.Context, partyID, userID uint) (*models.WatchPartyParticipant, error) {
	args := m.Called(ctx, partyID, userID)
	if p := args.Get(0); p != nil {
		return p.(*models.WatchPartyParticipant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWatchPartyRepo) GetParticipants(ctx context.Context, partyID uint) ([]models.WatchPartyParticipant, error) {
	args := m.Called(ctx, partyID)
	if p := args.Get(0); p != nil {
		return p.([]models.WatchPartyParticipant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWatchPartyRepo) UpdateParticipantStatus(ctx context.Context, participantID uint, status models.ParticipantStatus) error {
	return m.Called(ctx, participantID, status).Error(0)
}

func (m *mockWatchPartyRepo) UpsertProgress(ctx context.Context, progress *models.SeriesProgress) error {
	return m.Called(ctx, progress).Error(0)
}

func (m *mockWatchPartyRepo) GetProgressForParty(ctx context.Context, partyID uint) ([]models.SeriesProgress, error) {
	args := m.Called(ctx, partyID)
	if p := args.Get(0); p != nil {
		return p.([]models.SeriesProgress), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	return m.Called(ctx, notification).Error(0)
}

func (m *mockNotificationRepo) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	return m.Called(ctx, notifications).Error(0)
}

func (m *mockNotificationRepo) ListForUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if n := args.Get(0); n != nil {
		return n.([]models.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, notificationID, userID uint) (int64, error) {
	args := m.Called(ctx, notificationID, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) SendMessage(ctx context.Context, topic string, key, payload []byte) error {
	return m.Called(ctx, topic, key, payload).Error(0)
}

func (m *mockProducer) Close() {
	m.Called()
}

type mockMetadataClient struct {
	mock.Mock
}

func (m *mockMetadataClient) Details(ctx context.Context, mediaType models.MediaType, tmdbID int) (*tmdb.TitleDetails, error) {
	args := m.Called(ctx, mediaType, tmdbID)
	if d := args.Get(0); d != nil {
		return d.(*tmdb.TitleDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

// Interface conformance checks for the mocks.
var (
	_ storage.UserRepository          = (*mockUserRepo)(nil)
	_ storage.FriendshipRepository    = (*mockFriendshipRepo)(nil)
	_ storage.FriendRequestRepository = (*mockFriendRequestRepo)(nil)
	_ storage.ListRepository          = (*mockListRepo)(nil)
	_ storage.WatchPartyRepository    = (*mockWatchPartyRepo)(nil)
	_ MetadataClient                  = (*mockMetadataClient)(nil)
)
