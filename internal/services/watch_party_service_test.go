package services

import (
	"context"
	"testing"

	"cinematch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func tvParty(id, creatorID uint) *models.WatchParty {
	party := &models.WatchParty{
		CreatorID: creatorID,
		TMDBID:    1399,
		MediaType: models.TVMedia,
		Status:    models.WatchPartyActive,
	}
	party.ID = id
	return party
}

func TestGetPartyRequiresParticipation(t *testing.T) {
	partyRepo := new(mockWatchPartyRepo)
	ctx := context.Background()

	party := tvParty(5, 1)
	party.Participants = []models.WatchPartyParticipant{
		{WatchPartyID: 5, UserID: 1, Status: models.ParticipantAccepted},
		{WatchPartyID: 5, UserID: 2, Status: models.ParticipantPending},
	}
	partyRepo.On("GetPartyWithParticipants", ctx, uint(5)).Return(party, nil)

	svc := NewWatchPartyService(partyRepo)
	_, err := svc.GetParty(ctx, 3, 5)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestGetPartyIncludesProgressForTV(t *testing.T) {
	partyRepo := new(mockWatchPartyRepo)
	ctx := context.Background()

	party := tvParty(5, 1)
	party.Participants = []models.WatchPartyParticipant{
		{WatchPartyID: 5, UserID: 1, Status: models.ParticipantAccepted},
		{WatchPartyID: 5, UserID: 2, Status: models.ParticipantAccepted},
	}
	partyRepo.On("GetPartyWithParticipants", ctx, uint(5)).Return(party, nil)
	partyRepo.On("GetProgressForParty", ctx, uint(5)).Return([]models.SeriesProgress{
		{WatchPartyID: 5, UserID: 1, CurrentSeason: 2, CurrentEpisode: 4},
		{WatchPartyID: 5, UserID: 2, CurrentSeason: 1, CurrentEpisode: 9},
	}, nil)

	svc := NewWatchPartyService(partyRepo)
	detail, err := svc.GetParty(ctx, 2, 5)

	require.NoError(t, err)
	require.Len(t, detail.Progress, 2)
	assert.Equal(t, 2, detail.Progress[0].CurrentSeason)
}

func TestGetPartyNotFound(t *testing.T) {
	partyRepo := new(mockWatchPartyRepo)
	ctx := context.Background()
	partyRepo.On("GetPartyWithParticipants", ctx, uint(42)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewWatchPartyService(partyRepo)
	_, err := svc.GetParty(ctx, 1, 42)
	assert.ErrorIs(t, err, ErrPartyNotFound)
}

func TestUpdateProgressRejectsMovies(t *testing.T) {
	partyRepo := new(mockWatchPartyRepo)
	ctx := context.Background()

	movie := &models.WatchParty{CreatorID: 1, TMDBID: 603, MediaType: models.MovieMedia}
	movie.ID = 5
	partyRepo.On("GetPartyByID", ctx, uint(5)).Return(movie, nil)

	svc := NewWatchPartyService(partyRepo)
	_, err := svc.UpdateProgress(ctx, 1, 5, 1, 2)
	assert.ErrorIs(t, err, ErrProgressNotTV)
	partyRepo.AssertNotCalled(t, "UpsertProgress", mock.Anything, mock.Anything)
}

func TestUpdateProgressParticipantOnly(t *testing.T) {
	partyRepo := new(mockWatchPartyRepo)
	ctx := context.Background()

	partyRepo.On("GetPartyByID", ctx, uint(5)).Return(tvParty(5, 1), nil)
	partyRepo.On("GetParticipant", ctx, uint(5), uint(9)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewWatchPartyService(partyRepo)
	_, err := svc.UpdateProgress(ctx, 9, 5, 1, 2)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestUpdateProgressClampsToEpisodeOne(t *testing.T) {
	partyRepo := new(mockWatchPartyRepo)
	ctx := context.Background()

	partyRepo.On("GetPartyByID", ctx, uint(5)).Return(tvParty(5, 1), nil)
	partyRepo.On("GetParticipant", ctx, uint(5), uint(2)).Return(&models.WatchPartyParticipant{
		WatchPartyID: 5, UserID: 2, Status: models.ParticipantAccepted,
	}, nil)
	partyRepo.On("UpsertProgress", ctx, mock.MatchedBy(func(p *models.SeriesProgress) bool {
		return p.CurrentSeason == 1 && p.CurrentEpisode == 1 && p.UserID == 2
	})).Return(nil)

	svc := NewWatchPartyService(partyRepo)
	progress, err := svc.UpdateProgress(ctx, 2, 5, 0, -3)

	require.NoError(t, err)
	assert.Equal(t, 1, progress.CurrentSeason)
	assert.Equal(t, 1, progress.CurrentEpisode)
}
