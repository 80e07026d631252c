package services

import (
	"context"
	"errors"
	"testing"

	"cinematch/internal/config"
	"cinematch/internal/models"
	"cinematch/internal/storage"
	"cinematch/internal/tmdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestMatchService(listRepo *mockListRepo, friendshipRepo *mockFriendshipRepo, friendReqRepo *mockFriendRequestRepo, partyRepo *mockWatchPartyRepo, userRepo *mockUserRepo, metadata MetadataClient) MatchService {
	return NewMatchService(nil, listRepo, friendshipRepo, friendReqRepo, partyRepo, userRepo, metadata, nil, config.KafkaConfig{})
}

func wishlistItem(tmdbID int, mediaType models.MediaType, title string) models.ListItem {
	return models.ListItem{
		TMDBID:      tmdbID,
		MediaType:   mediaType,
		Title:       title,
		PosterPath:  "/poster.jpg",
		Overview:    "overview",
		ReleaseDate: "1999-03-31",
	}
}

func TestFindMatchesSharedTitle(t *testing.T) {
	listRepo := new(mockListRepo)
	friendshipRepo := new(mockFriendshipRepo)
	friendReqRepo := new(mockFriendRequestRepo)
	partyRepo := new(mockWatchPartyRepo)
	userRepo := new(mockUserRepo)

	ctx := context.Background()
	userID := uint(1)

	friendshipRepo.On("GetFriendIDs", ctx, userID).Return([]uint{2}, nil)
	friendReqRepo.On("GetPendingCounterpartIDs", ctx, userID).Return([]uint{3}, nil)

	// Caller wishlisted The Matrix most recently, then a tv show nobody
	// else has.
	listRepo.On("GetWishlistItems", ctx, userID).Return([]models.ListItem{
		wishlistItem(603, models.MovieMedia, "The Matrix"),
		wishlistItem(1399, models.TVMedia, "Game of Thrones"),
	}, nil)
	listRepo.On("FindUsersWithWishlistKeys", ctx, mock.Anything, mock.Anything, sharedInterestLimit).Return([]uint{}, nil)

	matrix2 := wishlistItem(603, models.MovieMedia, "The Matrix")
	matrix3 := wishlistItem(603, models.MovieMedia, "The Matrix")
	listRepo.On("GetWishlistItemsForUsers", ctx, []uint{2, 3}).Return([]storage.OwnedItem{
		{ListItem: matrix2, OwnerID: 2},
		{ListItem: matrix3, OwnerID: 3},
	}, nil)

	partyRepo.On("ListNonTerminalByCreator", ctx, userID).Return([]models.WatchParty{}, nil)

	userRepo.On("GetMultipleBasicInfoByIDs", ctx, []uint{2, 3}).Return([]*models.UserBasicInfo{
		{ID: 2, Username: "ana"},
		{ID: 3, Username: "ben"},
	}, nil)

	svc := newTestMatchService(listRepo, friendshipRepo, friendReqRepo, partyRepo, userRepo, nil)
	matches, err := svc.FindMatches(ctx, userID)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 603, matches[0].TMDBID)
	assert.Equal(t, models.MovieMedia, matches[0].MediaType)
	assert.Equal(t, "The Matrix", matches[0].Title)
	assert.Len(t, matches[0].MatchedFriends, 2)
	assert.Nil(t, matches[0].WatchParty)
}

func TestFindMatchesEmptyWishlist(t *testing.T) {
	listRepo := new(mockListRepo)
	friendshipRepo := new(mockFriendshipRepo)
	friendReqRepo := new(mockFriendRequestRepo)
	partyRepo := new(mockWatchPartyRepo)
	userRepo := new(mockUserRepo)

	ctx := context.Background()
	friendshipRepo.On("GetFriendIDs", ctx, uint(1)).Return([]uint{2}, nil)
	friendReqRepo.On("GetPendingCounterpartIDs", ctx, uint(1)).Return([]uint{}, nil)
	listRepo.On("GetWishlistItems", ctx, uint(1)).Return([]models.ListItem{}, nil)

	svc := newTestMatchService(listRepo, friendshipRepo, friendReqRepo, partyRepo, userRepo, nil)
	matches, err := svc.FindMatches(ctx, 1)

	require.NoError(t, err)
	assert.Empty(t, matches)
	listRepo.AssertNotCalled(t, "GetWishlistItemsForUsers", mock.Anything, mock.Anything)
}

func TestFindMatchesNoCandidates(t *testing.T) {
	listRepo := new(mockListRepo)
	friendshipRepo := new(mockFriendshipRepo)
	friendReqRepo := new(mockFriendRequestRepo)
	partyRepo := new(mockWatchPartyRepo)
	userRepo := new(mockUserRepo)

	ctx := context.Background()
	friendshipRepo.On("GetFriendIDs", ctx, uint(1)).Return([]uint{}, nil)
	friendReqRepo.On("GetPendingCounterpartIDs", ctx, uint(1)).Return([]uint{}, nil)
	listRepo.On("GetWishlistItems", ctx, uint(1)).Return([]models.ListItem{
		wishlistItem(603, models.MovieMedia, "The Matrix"),
	}, nil)
	listRepo.On("FindUsersWithWishlistKeys", ctx, mock.Anything, mock.Anything, sharedInterestLimit).Return([]uint{}, nil)

	svc := newTestMatchService(listRepo, friendshipRepo, friendReqRepo, partyRepo, userRepo, nil)
	matches, err := svc.FindMatches(ctx, 1)

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatchesAttachesExistingParty(t *testing.T) {
	listRepo := new(mockListRepo)
	friendshipRepo := new(mockFriendshipRepo)
	friendReqRepo := new(mockFriendRequestRepo)
	partyRepo := new(mockWatchPartyRepo)
	userRepo := new(mockUserRepo)

	ctx := context.Background()
	friendshipRepo.On("GetFriendIDs", ctx, uint(1)).Return([]uint{2}, nil)
	friendReqRepo.On("GetPendingCounterpartIDs", ctx, uint(1)).Return([]uint{}, nil)
	listRepo.On("GetWishlistItems", ctx, uint(1)).Return([]models.ListItem{
		wishlistItem(603, models.MovieMedia, "The Matrix"),
	}, nil)
	listRepo.On("FindUsersWithWishlistKeys", ctx, mock.Anything, mock.Anything, sharedInterestLimit).Return([]uint{}, nil)
	listRepo.On("GetWishlistItemsForUsers", ctx, []uint{2}).Return([]storage.OwnedItem{
		{ListItem: wishlistItem(603, models.MovieMedia, "The Matrix"), OwnerID: 2},
	}, nil)

	existing := models.WatchParty{
		CreatorID: 1,
		TMDBID:    603,
		MediaType: models.MovieMedia,
		Status:    models.WatchPartyPending,
	}
	partyRepo.On("ListNonTerminalByCreator", ctx, uint(1)).Return([]models.WatchParty{existing}, nil)
	userRepo.On("GetMultipleBasicInfoByIDs", ctx, []uint{2}).Return([]*models.UserBasicInfo{{ID: 2}}, nil)

	svc := newTestMatchService(listRepo, friendshipRepo, friendReqRepo, partyRepo, userRepo, nil)
	matches, err := svc.FindMatches(ctx, 1)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.NotNil(t, matches[0].WatchParty)
	assert.Equal(t, models.WatchPartyPending, matches[0].WatchParty.Status)
}

func TestFindMatchesBackfillsMetadata(t *testing.T) {
	listRepo := new(mockListRepo)
	friendshipRepo := new(mockFriendshipRepo)
	friendReqRepo := new(mockFriendRequestRepo)
	partyRepo := new(mockWatchPartyRepo)
	userRepo := new(mockUserRepo)
	metadata := new(mockMetadataClient)

	ctx := context.Background()
	friendshipRepo.On("GetFriendIDs", ctx, uint(1)).Return([]uint{2}, nil)
	friendReqRepo.On("GetPendingCounterpartIDs", ctx, uint(1)).Return([]uint{}, nil)

	// Bare item: only the media key was stored.
	bare := models.ListItem{TMDBID: 603, MediaType: models.MovieMedia}
	listRepo.On("GetWishlistItems", ctx, uint(1)).Return([]models.ListItem{bare}, nil)
	listRepo.On("FindUsersWithWishlistKeys", ctx, mock.Anything, mock.Anything, sharedInterestLimit).Return([]uint{}, nil)
	listRepo.On("GetWishlistItemsForUsers", ctx, []uint{2}).Return([]storage.OwnedItem{
		{ListItem: bare, OwnerID: 2},
	}, nil)
	partyRepo.On("ListNonTerminalByCreator", ctx, uint(1)).Return([]models.WatchParty{}, nil)
	userRepo.On("GetMultipleBasicInfoByIDs", ctx, []uint{2}).Return([]*models.UserBasicInfo{{ID: 2}}, nil)

	metadata.On("Details", ctx, models.MovieMedia, 603).Return(&tmdb.TitleDetails{
		ID:          603,
		Title:       "The Matrix",
		Overview:    "A computer hacker learns the truth.",
		ReleaseDate: "1999-03-31",
		PosterPath:  "/matrix.jpg",
	}, nil)

	svc := newTestMatchService(listRepo, friendshipRepo, friendReqRepo, partyRepo, userRepo, metadata)
	matches, err := svc.FindMatches(ctx, 1)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "The Matrix", matches[0].Title)
	assert.Equal(t, "/matrix.jpg", matches[0].PosterPath)
	assert.Equal(t, "1999-03-31", matches[0].ReleaseDate)
	metadata.AssertExpectations(t)
}

func TestCreateMatchValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid media type", func(t *testing.T) {
		svc := newTestMatchService(new(mockListRepo), new(mockFriendshipRepo), new(mockFriendRequestRepo), new(mockWatchPartyRepo), new(mockUserRepo), nil)
		_, err := svc.CreateMatch(ctx, 1, 603, "book", "", "", []uint{2})
		assert.ErrorIs(t, err, ErrInvalidMediaType)
	})

	t.Run("no invitees after removing self", func(t *testing.T) {
		svc := newTestMatchService(new(mockListRepo), new(mockFriendshipRepo), new(mockFriendRequestRepo), new(mockWatchPartyRepo), new(mockUserRepo), nil)
		_, err := svc.CreateMatch(ctx, 1, 603, models.MovieMedia, "", "", []uint{1, 1})
		assert.ErrorIs(t, err, ErrNoInvitees)
	})

	t.Run("unknown invitee", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		userRepo.On("GetMultipleBasicInfoByIDs", ctx, []uint{2, 3}).Return([]*models.UserBasicInfo{{ID: 2}}, nil)

		svc := newTestMatchService(new(mockListRepo), new(mockFriendshipRepo), new(mockFriendRequestRepo), new(mockWatchPartyRepo), userRepo, nil)
		_, err := svc.CreateMatch(ctx, 1, 603, models.MovieMedia, "", "", []uint{2, 3})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("title not in wishlist", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		userRepo.On("GetMultipleBasicInfoByIDs", ctx, []uint{2}).Return([]*models.UserBasicInfo{{ID: 2}}, nil)
		listRepo := new(mockListRepo)
		listRepo.On("FindWishlistItemForUser", ctx, uint(1), 603, models.MovieMedia).Return(nil, nil)

		svc := newTestMatchService(listRepo, new(mockFriendshipRepo), new(mockFriendRequestRepo), new(mockWatchPartyRepo), userRepo, nil)
		_, err := svc.CreateMatch(ctx, 1, 603, models.MovieMedia, "", "", []uint{2})
		assert.ErrorIs(t, err, ErrItemNotInWishlist)
		assert.Equal(t, "Item not found in wishlist", err.Error())
	})
}

func TestAggregatePartyStatus(t *testing.T) {
	creator := uint(1)
	p := func(userID uint, status models.ParticipantStatus) models.WatchPartyParticipant {
		return models.WatchPartyParticipant{UserID: userID, Status: status}
	}

	tests := []struct {
		name         string
		participants []models.WatchPartyParticipant
		want         models.WatchPartyStatus
	}{
		{
			name: "all pending stays pending",
			participants: []models.WatchPartyParticipant{
				p(1, models.ParticipantAccepted),
				p(2, models.ParticipantPending),
				p(3, models.ParticipantPending),
			},
			want: models.WatchPartyPending,
		},
		{
			name: "one accepted while others pending",
			participants: []models.WatchPartyParticipant{
				p(1, models.ParticipantAccepted),
				p(2, models.ParticipantAccepted),
				p(3, models.ParticipantPending),
			},
			want: models.WatchPartyAccepted,
		},
		{
			name: "all responded with an acceptance goes active",
			participants: []models.WatchPartyParticipant{
				p(1, models.ParticipantAccepted),
				p(2, models.ParticipantAccepted),
				p(3, models.ParticipantDeclined),
			},
			want: models.WatchPartyActive,
		},
		{
			name: "everyone declined",
			participants: []models.WatchPartyParticipant{
				p(1, models.ParticipantAccepted),
				p(2, models.ParticipantDeclined),
				p(3, models.ParticipantDeclined),
			},
			want: models.WatchPartyDeclined,
		},
		{
			name: "declines while one still pending",
			participants: []models.WatchPartyParticipant{
				p(1, models.ParticipantAccepted),
				p(2, models.ParticipantDeclined),
				p(3, models.ParticipantPending),
			},
			want: models.WatchPartyPending,
		},
		{
			name: "creator only",
			participants: []models.WatchPartyParticipant{
				p(1, models.ParticipantAccepted),
			},
			want: models.WatchPartyPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, aggregatePartyStatus(creator, tt.participants))
		})
	}
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []uint{2, 3}, dedupeIDs([]uint{2, 3, 2, 1, 3}, 1))
	assert.Empty(t, dedupeIDs([]uint{1, 1}, 1))
	assert.Empty(t, dedupeIDs(nil, 1))
}

func TestPartyCreateErrorMapsDuplicateKey(t *testing.T) {
	assert.ErrorIs(t, partyCreateError(gorm.ErrDuplicatedKey), ErrMatchAlreadyExists)

	plain := errors.New("connection reset")
	err := partyCreateError(plain)
	assert.ErrorIs(t, err, plain)
	assert.NotErrorIs(t, err, ErrMatchAlreadyExists)
}
