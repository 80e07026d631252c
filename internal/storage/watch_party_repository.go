package storage

import (
	"context"
	"errors"

	"cinematch/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nonTerminalStatuses are the party states a new match can still attach to.
var nonTerminalStatuses = []models.WatchPartyStatus{
	models.WatchPartyPending,
	models.WatchPartyAccepted,
	models.WatchPartyActive,
}

// WatchPartyRepository defines the interface for watch party data operations.
type WatchPartyRepository interface {
	CreateParty(ctx context.Context, party *models.WatchParty) error
	GetPartyByID(ctx context.Context, partyID uint) (*models.WatchParty, error)
	GetPartyWithParticipants(ctx context.Context, partyID uint) (*models.WatchParty, error)
	UpdatePartyStatus(ctx context.Context, partyID uint, status models.WatchPartyStatus) error
	FindNonTerminalParty(ctx context.Context, creatorID uint, tmdbID int, mediaType models.MediaType) (*models.WatchParty, error)
	ListNonTerminalByCreator(ctx context.Context, creatorID uint) ([]models.WatchParty, error)
	ListPartiesForUser(ctx context.Context, userID uint) ([]models.WatchParty, error)

	CreateParticipant(ctx context.Context, participant *models.WatchPartyParticipant) error
	GetParticipant(ctx context.Context, partyID, userID uint) (*models.WatchPartyParticipant, error)
	GetParticipants(ctx context.Context, partyID uint) ([]models.WatchPartyParticipant, error)
	UpdateParticipantStatus(ctx context.Context, participantID uint, status models.ParticipantStatus) error

	UpsertProgress(ctx context.Context, progress *models.SeriesProgress) error
	GetProgressForParty(ctx context.Context, partyID uint) ([]models.SeriesProgress, error)
}

type gormWatchPartyRepository struct {
	db *gorm.DB
}

// NewGormWatchPartyRepository creates a new GORM-based WatchPartyRepository.
func NewGormWatchPartyRepository(db *gorm.DB) WatchPartyRepository {
	return &gormWatchPartyRepository{db: db}
}

func (r *gormWatchPartyRepository) CreateParty(ctx context.Context, party *models.WatchParty) error {
	return r.db.WithContext(ctx).Create(party).Error
}

func (r *gormWatchPartyRepository) GetPartyByID(ctx context.Context, partyID uint) (*models.WatchParty, error) {
	var party models.WatchParty
	err := r.db.WithContext(ctx).First(&party, partyID).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *gormWatchPartyRepository) GetPartyWithParticipants(ctx context.Context, partyID uint) (*models.WatchParty, error) {
	var party models.WatchParty
	err := r.db.WithContext(ctx).Preload("Participants").First(&party, partyID).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *gormWatchPartyRepository) UpdatePartyStatus(ctx context.Context, partyID uint, status models.WatchPartyStatus) error {
	return r.db.WithContext(ctx).Model(&models.WatchParty{}).Where("id = ?", partyID).Update("status", status).Error
}

// FindNonTerminalParty looks up a pending/accepted/active party by creator
// and title. Returns (nil, nil) when there is none, which is what allows a
// new match to be created.
func (r *gormWatchPartyRepository) FindNonTerminalParty(ctx context.Context, creatorID uint, tmdbID int, mediaType models.MediaType) (*models.WatchParty, error) {
	var party models.WatchParty
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND tmdb_id = ? AND media_type = ?", creatorID, tmdbID, mediaType).
		Where("status IN ?", nonTerminalStatuses).
		First(&party).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &party, nil
}

func (r *gormWatchPartyRepository) ListNonTerminalByCreator(ctx context.Context, creatorID uint) ([]models.WatchParty, error) {
	var parties []models.WatchParty
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND status IN ?", creatorID, nonTerminalStatuses).
		Find(&parties).Error
	return parties, err
}

// ListPartiesForUser returns every party the user created or was invited
// to, newest first.
func (r *gormWatchPartyRepository) ListPartiesForUser(ctx context.Context, userID uint) ([]models.WatchParty, error) {
	var parties []models.WatchParty
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("creator_id = ? OR id IN (?)", userID,
			r.db.Model(&models.WatchPartyParticipant{}).Select("watch_party_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&parties).Error
	return parties, err
}

func (r *gormWatchPartyRepository) CreateParticipant(ctx context.Context, participant *models.WatchPartyParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *gormWatchPartyRepository) GetParticipant(ctx context.Context, partyID, userID uint) (*models.WatchPartyParticipant, error) {
	var participant models.WatchPartyParticipant
	err := r.db.WithContext(ctx).
		Where("watch_party_id = ? AND user_id = ?", partyID, userID).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *gormWatchPartyRepository) GetParticipants(ctx context.Context, partyID uint) ([]models.WatchPartyParticipant, error) {
	var participants []models.WatchPartyParticipant
	err := r.db.WithContext(ctx).Where("watch_party_id = ?", partyID).Find(&participants).Error
	return participants, err
}

func (r *gormWatchPartyRepository) UpdateParticipantStatus(ctx context.Context, participantID uint, status models.ParticipantStatus) error {
	return r.db.WithContext(ctx).Model(&models.WatchPartyParticipant{}).Where("id = ?", participantID).Update("status", status).Error
}

// UpsertProgress inserts or updates the participant's series progress on
// the (watch_party_id, user_id) unique index.
func (r *gormWatchPartyRepository) UpsertProgress(ctx context.Context, progress *models.SeriesProgress) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "watch_party_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_season", "current_episode", "updated_at"}),
	}).Create(progress).Error
}

func (r *gormWatchPartyRepository) GetProgressForParty(ctx context.Context, partyID uint) ([]models.SeriesProgress, error) {
	var progress []models.SeriesProgress
	err := r.db.WithContext(ctx).Where("watch_party_id = ?", partyID).Find(&progress).Error
	return progress, err
}
