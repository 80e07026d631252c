package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"cinematch/internal/config"
	"cinematch/internal/kafka"
	"cinematch/internal/models"
	"cinematch/internal/storage"
	"cinematch/internal/tmdb"

	"gorm.io/gorm"
)

var (
	ErrMatchAlreadyExists = errors.New("an active watch party already exists for this title")
	ErrPartyNotFound      = errors.New("watch party not found")
	ErrNotParticipant     = errors.New("you are not a participant of this watch party")
	ErrAlreadyResponded   = errors.New("you have already responded to this watch party")
	ErrInvalidRespond     = errors.New("response must be accept or decline")
	ErrNoInvitees         = errors.New("at least one friend must be invited")
)

// MetadataClient is the slice of the TMDB client the matching routine needs
// to backfill display fields.
type MetadataClient interface {
	Details(ctx context.Context, mediaType models.MediaType, tmdbID int) (*tmdb.TitleDetails, error)
}

// WatchPartyInviteEvent is the Kafka payload published after a watch party
// is created. The consumer fans it out into invitee notifications.
type WatchPartyInviteEvent struct {
	PartyID        uint             `json:"party_id"`
	CreatorID      uint             `json:"creator_id"`
	TMDBID         int              `json:"tmdb_id"`
	MediaType      models.MediaType `json:"media_type"`
	Title          string           `json:"title,omitempty"`
	InvitedUserIDs []uint           `json:"invited_user_ids"`
	Timestamp      time.Time        `json:"timestamp"`
}

// MatchService finds wishlist overlaps and turns them into watch parties.
type MatchService interface {
	FindMatches(ctx context.Context, userID uint) ([]*models.Match, error)
	CreateMatch(ctx context.Context, userID uint, tmdbID int, mediaType models.MediaType, title, posterPath string, friendIDs []uint) (*models.WatchParty, error)
	Respond(ctx context.Context, userID, partyID uint, accept bool) (*models.WatchParty, error)
}

// sharedInterestLimit caps how many non-friend users with overlapping
// wishlists are folded into the candidate set.
const sharedInterestLimit = 20

type matchService struct {
	db             *gorm.DB
	listRepo       storage.ListRepository
	friendshipRepo storage.FriendshipRepository
	friendReqRepo  storage.FriendRequestRepository
	partyRepo      storage.WatchPartyRepository
	userRepo       storage.UserRepository
	metadata       MetadataClient
	producer       kafka.MessageProducer
	kafkaConfig    config.KafkaConfig
}

// NewMatchService creates a new MatchService instance. metadata may be nil,
// in which case display fields are served from the denormalized item columns
// only.
func NewMatchService(
	db *gorm.DB,
	listRepo storage.ListRepository,
	friendshipRepo storage.FriendshipRepository,
	friendReqRepo storage.FriendRequestRepository,
	partyRepo storage.WatchPartyRepository,
	userRepo storage.UserRepository,
	metadata MetadataClient,
	producer kafka.MessageProducer,
	cfg config.KafkaConfig,
) MatchService {
	return &matchService{
		db:             db,
		listRepo:       listRepo,
		friendshipRepo: friendshipRepo,
		friendReqRepo:  friendReqRepo,
		partyRepo:      partyRepo,
		userRepo:       userRepo,
		metadata:       metadata,
		producer:       producer,
		kafkaConfig:    cfg,
	}
}

// FindMatches computes the caller's wishlist overlaps. Candidates are the
// caller's friends, pending-request counterparts, and a bounded set of
// shared-interest users. One Match is returned per overlapping title,
// ordered by how recently the caller wishlisted it.
func (s *matchService) FindMatches(ctx context.Context, userID uint) ([]*models.Match, error) {
	candidates, err := s.candidateUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	myItems, err := s.listRepo.GetWishlistItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist items: %w", err)
	}
	if len(myItems) == 0 {
		return []*models.Match{}, nil
	}

	keys := make([]models.MediaKey, 0, len(myItems))
	seenKeys := make(map[models.MediaKey]bool, len(myItems))
	for i := range myItems {
		k := myItems[i].Key()
		if !seenKeys[k] {
			seenKeys[k] = true
			keys = append(keys, k)
		}
	}

	// Broaden the candidate pool with strangers who share wishlist titles.
	exclude := append([]uint{userID}, candidates...)
	discovered, err := s.listRepo.FindUsersWithWishlistKeys(ctx, keys, exclude, sharedInterestLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to discover shared-interest users: %w", err)
	}
	candidates = append(candidates, discovered...)
	if len(candidates) == 0 {
		return []*models.Match{}, nil
	}

	theirItems, err := s.listRepo.GetWishlistItemsForUsers(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate wishlist items: %w", err)
	}

	ownersByKey := make(map[models.MediaKey][]uint)
	for i := range theirItems {
		k := theirItems[i].Key()
		owners := ownersByKey[k]
		dup := false
		for _, o := range owners {
			if o == theirItems[i].OwnerID {
				dup = true
				break
			}
		}
		if !dup {
			ownersByKey[k] = append(owners, theirItems[i].OwnerID)
		}
	}

	parties, err := s.partyRepo.ListNonTerminalByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing watch parties: %w", err)
	}
	partyByKey := make(map[models.MediaKey]*models.WatchParty, len(parties))
	for i := range parties {
		partyByKey[models.MediaKey{TMDBID: parties[i].TMDBID, MediaType: parties[i].MediaType}] = &parties[i]
	}

	matches := make([]*models.Match, 0)
	emitted := make(map[models.MediaKey]bool)
	for i := range myItems {
		item := &myItems[i]
		k := item.Key()
		if emitted[k] {
			continue
		}
		emitted[k] = true

		owners := ownersByKey[k]
		if len(owners) == 0 {
			continue
		}

		infos, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, owners)
		if err != nil {
			return nil, fmt.Errorf("failed to get matched user info: %w", err)
		}

		match := &models.Match{
			TMDBID:         item.TMDBID,
			MediaType:      item.MediaType,
			Title:          item.Title,
			PosterPath:     item.PosterPath,
			Overview:       item.Overview,
			ReleaseDate:    item.ReleaseDate,
			MatchedFriends: infos,
			WatchParty:     partyByKey[k],
		}
		s.backfillMetadata(ctx, match)
		matches = append(matches, match)
	}

	return matches, nil
}

// CreateMatch confirms a match by creating a watch party and inviting the
// given friends. The title must be in the creator's wishlist, and the
// creator may have at most one non-terminal party per title.
func (s *matchService) CreateMatch(ctx context.Context, userID uint, tmdbID int, mediaType models.MediaType, title, posterPath string, friendIDs []uint) (*models.WatchParty, error) {
	if !mediaType.Valid() {
		return nil, ErrInvalidMediaType
	}

	invitees := dedupeIDs(friendIDs, userID)
	if len(invitees) == 0 {
		return nil, ErrNoInvitees
	}

	inviteeInfos, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, invitees)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invitees: %w", err)
	}
	if len(inviteeInfos) != len(invitees) {
		return nil, ErrUserNotFound
	}

	item, err := s.listRepo.FindWishlistItemForUser(ctx, userID, tmdbID, mediaType)
	if err != nil {
		return nil, fmt.Errorf("failed to check wishlist: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotInWishlist
	}

	if title == "" {
		title = item.Title
	}
	if posterPath == "" {
		posterPath = item.PosterPath
	}

	var party *models.WatchParty
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txPartyRepo := storage.NewGormWatchPartyRepository(tx)

		existing, err := txPartyRepo.FindNonTerminalParty(ctx, userID, tmdbID, mediaType)
		if err != nil {
			return fmt.Errorf("failed to check existing parties: %w", err)
		}
		if existing != nil {
			return ErrMatchAlreadyExists
		}

		party = &models.WatchParty{
			CreatorID:  userID,
			TMDBID:     tmdbID,
			MediaType:  mediaType,
			Status:     models.WatchPartyPending,
			Title:      title,
			PosterPath: posterPath,
			ItemID:     item.ID,
		}
		if err := txPartyRepo.CreateParty(ctx, party); err != nil {
			return partyCreateError(err)
		}

		// Creator joins their own party already accepted.
		creatorRow := &models.WatchPartyParticipant{
			WatchPartyID: party.ID,
			UserID:       userID,
			Status:       models.ParticipantAccepted,
		}
		if err := txPartyRepo.CreateParticipant(ctx, creatorRow); err != nil {
			return fmt.Errorf("failed to add creator participant: %w", err)
		}
		party.Participants = append(party.Participants, *creatorRow)

		for _, friendID := range invitees {
			row := &models.WatchPartyParticipant{
				WatchPartyID: party.ID,
				UserID:       friendID,
				Status:       models.ParticipantPending,
			}
			if err := txPartyRepo.CreateParticipant(ctx, row); err != nil {
				return fmt.Errorf("failed to add participant %d: %w", friendID, err)
			}
			party.Participants = append(party.Participants, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishInviteEvent(ctx, party, invitees)
	return party, nil
}

// Respond records an invitee's accept/decline and re-aggregates the party
// status in the same transaction.
func (s *matchService) Respond(ctx context.Context, userID, partyID uint, accept bool) (*models.WatchParty, error) {
	var updated *models.WatchParty
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txPartyRepo := storage.NewGormWatchPartyRepository(tx)

		party, err := txPartyRepo.GetPartyByID(ctx, partyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return fmt.Errorf("failed to get watch party: %w", err)
		}
		if party.Status.Terminal() {
			return ErrAlreadyResponded
		}

		participant, err := txPartyRepo.GetParticipant(ctx, partyID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotParticipant
			}
			return fmt.Errorf("failed to get participant: %w", err)
		}
		if participant.Status != models.ParticipantPending {
			return ErrAlreadyResponded
		}

		newStatus := models.ParticipantDeclined
		if accept {
			newStatus = models.ParticipantAccepted
		}
		if err := txPartyRepo.UpdateParticipantStatus(ctx, participant.ID, newStatus); err != nil {
			return fmt.Errorf("failed to update participant status: %w", err)
		}

		participants, err := txPartyRepo.GetParticipants(ctx, partyID)
		if err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}

		aggregated := aggregatePartyStatus(party.CreatorID, participants)
		if aggregated != party.Status {
			if err := txPartyRepo.UpdatePartyStatus(ctx, partyID, aggregated); err != nil {
				return fmt.Errorf("failed to update party status: %w", err)
			}
			party.Status = aggregated
		}
		party.Participants = participants
		updated = party
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// aggregatePartyStatus derives the party-level status from the invitee
// responses. The creator's auto-accepted row does not count as a response.
// Once everyone has responded the party becomes active if anyone accepted,
// declined if nobody did; before that a single acceptance moves the party
// from pending to accepted.
func aggregatePartyStatus(creatorID uint, participants []models.WatchPartyParticipant) models.WatchPartyStatus {
	var invitees, accepted, responded int
	for i := range participants {
		if participants[i].UserID == creatorID {
			continue
		}
		invitees++
		switch participants[i].Status {
		case models.ParticipantAccepted:
			accepted++
			responded++
		case models.ParticipantDeclined:
			responded++
		}
	}

	if invitees == 0 {
		return models.WatchPartyPending
	}
	if responded == invitees {
		if accepted > 0 {
			return models.WatchPartyActive
		}
		return models.WatchPartyDeclined
	}
	if accepted > 0 {
		return models.WatchPartyAccepted
	}
	return models.WatchPartyPending
}

// partyCreateError maps the unique violation raised by the live-title index
// to the conflict sentinel. The in-transaction read catches sequential
// duplicates; the index catches concurrent ones.
func partyCreateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrMatchAlreadyExists
	}
	return fmt.Errorf("failed to create watch party: %w", err)
}

func (s *matchService) candidateUserIDs(ctx context.Context, userID uint) ([]uint, error) {
	friendIDs, err := s.friendshipRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend IDs: %w", err)
	}

	pendingIDs, err := s.friendReqRepo.GetPendingCounterpartIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending request counterparts: %w", err)
	}

	return dedupeIDs(append(friendIDs, pendingIDs...), userID), nil
}

// backfillMetadata fills missing display fields from TMDB. Failures are
// logged and skipped; the match still goes out with whatever the item row
// carried.
func (s *matchService) backfillMetadata(ctx context.Context, match *models.Match) {
	if s.metadata == nil {
		return
	}
	if match.Title != "" && match.PosterPath != "" && match.Overview != "" {
		return
	}

	details, err := s.metadata.Details(ctx, match.MediaType, match.TMDBID)
	if err != nil {
		log.Printf("Failed to backfill metadata for %s/%d: %v", match.MediaType, match.TMDBID, err)
		return
	}
	if match.Title == "" {
		match.Title = details.DisplayTitle()
	}
	if match.PosterPath == "" {
		match.PosterPath = details.PosterPath
	}
	if match.Overview == "" {
		match.Overview = details.Overview
	}
	if match.ReleaseDate == "" {
		match.ReleaseDate = details.Released()
	}
}

func (s *matchService) publishInviteEvent(ctx context.Context, party *models.WatchParty, invitees []uint) {
	if s.producer == nil {
		return
	}

	event := WatchPartyInviteEvent{
		PartyID:        party.ID,
		CreatorID:      party.CreatorID,
		TMDBID:         party.TMDBID,
		MediaType:      party.MediaType,
		Title:          party.Title,
		InvitedUserIDs: invitees,
		Timestamp:      time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal watch party invite event for party %d: %v", party.ID, err)
		return
	}

	// The party is already committed; a publish failure only delays the
	// in-app notifications.
	key := []byte(fmt.Sprintf("%d", party.ID))
	if err := s.producer.SendMessage(ctx, s.kafkaConfig.WatchPartyInviteTopic, key, payload); err != nil {
		log.Printf("Failed to publish watch party invite event for party %d: %v", party.ID, err)
	}
}

// dedupeIDs removes duplicates and the excluded ID while preserving order.
func dedupeIDs(ids []uint, exclude uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == exclude || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
