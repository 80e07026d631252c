package storage

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cinematch/internal/config"
	"cinematch/internal/models"
)

// InitDB initializes the database connection using the provided configuration.
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "postgres":
		var dsnParts []string
		dsnParts = append(dsnParts, fmt.Sprintf("host=%s", cfg.Host))
		dsnParts = append(dsnParts, fmt.Sprintf("port=%d", cfg.Port))
		dsnParts = append(dsnParts, fmt.Sprintf("user=%s", cfg.User))
		dsnParts = append(dsnParts, fmt.Sprintf("dbname=%s", cfg.DBName))
		if cfg.Password != "" {
			dsnParts = append(dsnParts, fmt.Sprintf("password=%s", cfg.Password))
		}
		dsnParts = append(dsnParts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))

		dialector = postgres.Open(strings.Join(dsnParts, " "))
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// AutoMigrateTables runs GORM's auto-migration for all defined models.
func AutoMigrateTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.List{},
		&models.ListItem{},
		&models.WatchParty{},
		&models.WatchPartyParticipant{},
		&models.SeriesProgress{},
		&models.ListLike{},
		&models.ListComment{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	if err := db.Exec(partyLiveTitleIndex()).Error; err != nil {
		return fmt.Errorf("failed to create watch party uniqueness index: %w", err)
	}
	return nil
}

// partyLiveTitleIndex builds the partial unique index that allows at most one
// non-terminal watch party per (creator, tmdb_id, media_type). Concurrent
// creations for the same title then fail with a unique violation instead of
// both committing. Terminal parties may repeat, hence the partial predicate.
func partyLiveTitleIndex() string {
	quoted := make([]string, len(nonTerminalStatuses))
	for i, status := range nonTerminalStatuses {
		quoted[i] = fmt.Sprintf("'%s'", status)
	}
	return fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_watch_parties_live_title ON watch_parties (creator_id, tmdb_id, media_type) WHERE status IN (%s) AND deleted_at IS NULL",
		strings.Join(quoted, ", "),
	)
}
