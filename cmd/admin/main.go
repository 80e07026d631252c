package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cinematch/internal/models"
	"cinematch/internal/storage"
)

// Operational inspection tool, run directly against the database.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  ./admin show-user <userID>               - show a user's profile and lists")
		fmt.Println("  ./admin show-party <partyID>             - show a watch party")
		fmt.Println("  ./admin list-participants <partyID>      - list a watch party's participants")
		os.Exit(1)
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=postgres dbname=cinematch_db password=password sslmode=disable"
	}
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer sqlDB.Close()

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		log.Fatalf("Failed to create GORM instance: %v", err)
	}

	partyRepo := storage.NewGormWatchPartyRepository(db)
	listRepo := storage.NewGormListRepository(db)

	switch os.Args[1] {
	case "show-user":
		showUser(db, listRepo, parseIDArg())

	case "show-party":
		showParty(partyRepo, parseIDArg())

	case "list-participants":
		listParticipants(partyRepo, parseIDArg())

	default:
		log.Fatalf("Unknown command: %s", os.Args[1])
	}
}

func parseIDArg() uint {
	if len(os.Args) < 3 {
		log.Fatalf("Missing ID argument")
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		log.Fatalf("Invalid ID: %v", err)
	}
	return uint(id)
}

func showUser(db *gorm.DB, listRepo storage.ListRepository, userID uint) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		log.Fatalf("Failed to find user: %v", err)
	}

	fmt.Printf("User %d:\n", userID)
	fmt.Println("--------------------------------------")
	fmt.Printf("Username:     %s\n", user.Username)
	fmt.Printf("Display name: %s\n", user.DisplayName)
	fmt.Printf("Email:        %s\n", user.Email)
	fmt.Printf("Created:      %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))

	lists, err := listRepo.GetListsByUser(context.Background(), userID)
	if err != nil {
		fmt.Printf("Failed to load lists: %v\n", err)
		return
	}
	fmt.Printf("Lists (%d):\n", len(lists))
	for _, l := range lists {
		fmt.Printf("  #%d %s (%s, public=%v)\n", l.ID, l.Name, l.Type, l.IsPublic)
	}
}

func showParty(repo storage.WatchPartyRepository, partyID uint) {
	party, err := repo.GetPartyWithParticipants(context.Background(), partyID)
	if err != nil {
		log.Fatalf("Failed to find watch party: %v", err)
	}

	fmt.Printf("Watch party %d:\n", partyID)
	fmt.Println("--------------------------------------")
	fmt.Printf("Creator:    %d\n", party.CreatorID)
	fmt.Printf("Title:      %s (%s %d)\n", party.Title, party.MediaType, party.TMDBID)
	fmt.Printf("Status:     %s\n", party.Status)
	fmt.Printf("Created:    %s\n", party.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Participants: %d\n", len(party.Participants))
}

func listParticipants(repo storage.WatchPartyRepository, partyID uint) {
	participants, err := repo.GetParticipants(context.Background(), partyID)
	if err != nil {
		log.Fatalf("Failed to load participants: %v", err)
	}

	fmt.Printf("Participants of watch party %d (%d):\n", partyID, len(participants))
	fmt.Println("--------------------------------------")
	for i, p := range participants {
		fmt.Printf("#%d ID: %d, User: %d, Status: %s, Responded: %s\n",
			i+1, p.ID, p.UserID, p.Status, p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}
