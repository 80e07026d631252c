package services

import (
	"context"
	"errors"
	"fmt"

	"cinematch/internal/models"
	"cinematch/internal/storage"

	"gorm.io/gorm"
)

var ErrProgressNotTV = errors.New("series progress only applies to tv watch parties")

// WatchPartyDetail bundles a party with its per-participant series progress.
type WatchPartyDetail struct {
	models.WatchParty
	Progress []models.SeriesProgress `json:"progress,omitempty"`
}

// WatchPartyService covers viewing parties and tracking series progress.
// Creation and responses live in MatchService since they belong to the
// matching flow.
type WatchPartyService interface {
	ListParties(ctx context.Context, userID uint) ([]models.WatchParty, error)
	GetParty(ctx context.Context, userID, partyID uint) (*WatchPartyDetail, error)
	UpdateProgress(ctx context.Context, userID, partyID uint, season, episode int) (*models.SeriesProgress, error)
}

type watchPartyService struct {
	partyRepo storage.WatchPartyRepository
}

// NewWatchPartyService creates a new WatchPartyService instance.
func NewWatchPartyService(partyRepo storage.WatchPartyRepository) WatchPartyService {
	return &watchPartyService{partyRepo: partyRepo}
}

// ListParties returns every party the user created or was invited to.
func (s *watchPartyService) ListParties(ctx context.Context, userID uint) ([]models.WatchParty, error) {
	parties, err := s.partyRepo.ListPartiesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch parties: %w", err)
	}
	return parties, nil
}

// GetParty returns the party with participants and progress. Only
// participants may view it.
func (s *watchPartyService) GetParty(ctx context.Context, userID, partyID uint) (*WatchPartyDetail, error) {
	party, err := s.partyRepo.GetPartyWithParticipants(ctx, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("failed to get watch party %d: %w", partyID, err)
	}

	if !isParticipant(party, userID) {
		return nil, ErrNotParticipant
	}

	detail := &WatchPartyDetail{WatchParty: *party}
	if party.MediaType == models.TVMedia {
		progress, err := s.partyRepo.GetProgressForParty(ctx, partyID)
		if err != nil {
			return nil, fmt.Errorf("failed to get progress for party %d: %w", partyID, err)
		}
		detail.Progress = progress
	}
	return detail, nil
}

// UpdateProgress records where the participant is in the series. Each
// participant tracks their own position.
func (s *watchPartyService) UpdateProgress(ctx context.Context, userID, partyID uint, season, episode int) (*models.SeriesProgress, error) {
	party, err := s.partyRepo.GetPartyByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("failed to get watch party %d: %w", partyID, err)
	}
	if party.MediaType != models.TVMedia {
		return nil, ErrProgressNotTV
	}

	if _, err := s.partyRepo.GetParticipant(ctx, partyID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotParticipant
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if season < 1 {
		season = 1
	}
	if episode < 1 {
		episode = 1
	}

	progress := &models.SeriesProgress{
		WatchPartyID:   partyID,
		UserID:         userID,
		CurrentSeason:  season,
		CurrentEpisode: episode,
	}
	if err := s.partyRepo.UpsertProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return progress, nil
}

func isParticipant(party *models.WatchParty, userID uint) bool {
	if party.CreatorID == userID {
		return true
	}
	for i := range party.Participants {
		if party.Participants[i].UserID == userID {
			return true
		}
	}
	return false
}
