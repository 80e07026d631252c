package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinematch/internal/config"
	apihandlers "cinematch/internal/handlers/apiserver"
	appKafka "cinematch/internal/kafka"
	kafkahandlers "cinematch/internal/kafka/handlers"
	"cinematch/internal/middleware"
	appRedis "cinematch/internal/redis"
	"cinematch/internal/services"
	"cinematch/internal/storage"
	"cinematch/internal/tmdb"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("API server configuration loaded.")

	// 2. Initialize database connection
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.Println("API server database connected.")

	if err := storage.AutoMigrateTables(db); err != nil {
		log.Printf("Warning: database migration may have failed: %v", err)
	} else {
		log.Println("Database tables migrated.")
	}

	// 3. Initialize Redis client
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis.")

	// 4. Token blacklist backed by Redis
	tokenBlacklistService := appRedis.NewRedisTokenBlacklist(redisClient)

	// 5. Initialize repositories
	userRepo := storage.NewGormUserRepository(db)
	friendReqRepo := storage.NewGormFriendRequestRepository(db)
	friendshipRepo := storage.NewGormFriendshipRepository(db)
	listRepo := storage.NewGormListRepository(db)
	partyRepo := storage.NewGormWatchPartyRepository(db)
	notificationRepo := storage.NewGormNotificationRepository(db)
	socialRepo := storage.NewGormSocialRepository(db)

	// 6. Initialize Kafka producer
	kfkProducer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		log.Fatalf("Failed to create Kafka producer: %v", err)
	}
	defer kfkProducer.Close()
	log.Println("Kafka producer initialized.")

	// 7. TMDB metadata client
	tmdbClient := tmdb.NewClient(cfg.TMDB)

	// 8. Initialize services
	authService := services.NewAuthService(userRepo, listRepo, cfg)
	userService := services.NewUserService(userRepo, friendshipRepo, friendReqRepo)
	friendReqService := services.NewFriendRequestService(db, userRepo, friendReqRepo, friendshipRepo, notificationRepo, kfkProducer, cfg.Kafka)
	listService := services.NewListService(listRepo, friendshipRepo)
	matchService := services.NewMatchService(db, listRepo, friendshipRepo, friendReqRepo, partyRepo, userRepo, tmdbClient, kfkProducer, cfg.Kafka)
	partyService := services.NewWatchPartyService(partyRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	socialService := services.NewSocialService(socialRepo, listRepo, userRepo, friendshipRepo)

	// 9. Initialize handlers
	authHandler := apihandlers.NewAuthHandler(authService, tokenBlacklistService)
	userHandler := apihandlers.NewUserHandler(userService)
	friendReqHandler := apihandlers.NewFriendRequestHandler(friendReqService)
	listHandler := apihandlers.NewListHandler(listService)
	matchHandler := apihandlers.NewMatchHandler(matchService)
	partyHandler := apihandlers.NewWatchPartyHandler(partyService)
	mediaHandler := apihandlers.NewMediaHandler(tmdbClient)
	notificationHandler := apihandlers.NewNotificationHandler(notificationService)
	socialHandler := apihandlers.NewSocialHandler(socialService)

	// 10. Routing
	r := mux.NewRouter()

	// Public auth routes
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// Public read routes: profiles and public lists need no session.
	r.HandleFunc("/users/{userID:[0-9]+}", userHandler.GetUserProfile).Methods(http.MethodGet)
	r.HandleFunc("/lists/{listID:[0-9]+}", listHandler.GetPublicList).Methods(http.MethodGet)

	authMW := middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklistService)

	// Authenticated API routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	apiRouter.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	// Users
	apiRouter.HandleFunc("/users/me", userHandler.GetMe).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/me", userHandler.UpdateProfile).Methods(http.MethodPut)
	apiRouter.HandleFunc("/users/search", userHandler.SearchUsers).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{userID:[0-9]+}", userHandler.GetUserProfile).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{userID:[0-9]+}/lists", listHandler.GetUserLists).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{userID:[0-9]+}/wishlist", listHandler.GetWishlist).Methods(http.MethodGet)

	// Friends
	apiRouter.HandleFunc("/friends", friendReqHandler.ListFriends).Methods(http.MethodGet)
	friendRequestRouter := apiRouter.PathPrefix("/friend-requests").Subrouter()
	friendRequestRouter.HandleFunc("", friendReqHandler.SendFriendRequest).Methods(http.MethodPost)
	friendRequestRouter.HandleFunc("/pending", friendReqHandler.ListPendingRequests).Methods(http.MethodGet)
	friendRequestRouter.HandleFunc("/{requestID:[0-9]+}/accept", friendReqHandler.AcceptFriendRequest).Methods(http.MethodPost)
	friendRequestRouter.HandleFunc("/{requestID:[0-9]+}/reject", friendReqHandler.RejectFriendRequest).Methods(http.MethodPost)

	// Lists and items
	listRouter := apiRouter.PathPrefix("/lists").Subrouter()
	listRouter.HandleFunc("", listHandler.CreateList).Methods(http.MethodPost)
	listRouter.HandleFunc("", listHandler.GetMyLists).Methods(http.MethodGet)
	listRouter.HandleFunc("/{listID:[0-9]+}", listHandler.GetList).Methods(http.MethodGet)
	listRouter.HandleFunc("/{listID:[0-9]+}", listHandler.UpdateList).Methods(http.MethodPut)
	listRouter.HandleFunc("/{listID:[0-9]+}", listHandler.DeleteList).Methods(http.MethodDelete)
	listRouter.HandleFunc("/{listID:[0-9]+}/items", listHandler.AddItem).Methods(http.MethodPost)
	listRouter.HandleFunc("/{listID:[0-9]+}/items/{itemID:[0-9]+}", listHandler.RemoveItem).Methods(http.MethodDelete)

	// Likes and comments
	listRouter.HandleFunc("/{listID:[0-9]+}/likes", socialHandler.LikeList).Methods(http.MethodPost)
	listRouter.HandleFunc("/{listID:[0-9]+}/likes", socialHandler.UnlikeList).Methods(http.MethodDelete)
	listRouter.HandleFunc("/{listID:[0-9]+}/likes", socialHandler.GetLikeSummary).Methods(http.MethodGet)
	listRouter.HandleFunc("/{listID:[0-9]+}/comments", socialHandler.AddComment).Methods(http.MethodPost)
	listRouter.HandleFunc("/{listID:[0-9]+}/comments", socialHandler.ListComments).Methods(http.MethodGet)
	apiRouter.HandleFunc("/comments/{commentID:[0-9]+}", socialHandler.DeleteComment).Methods(http.MethodDelete)

	// Matching and watch parties
	apiRouter.HandleFunc("/matches", matchHandler.FindMatches).Methods(http.MethodGet)
	apiRouter.HandleFunc("/matches", matchHandler.CreateMatch).Methods(http.MethodPost)
	apiRouter.HandleFunc("/matches/{partyID:[0-9]+}/respond", matchHandler.Respond).Methods(http.MethodPost)
	apiRouter.HandleFunc("/watch-parties", partyHandler.ListParties).Methods(http.MethodGet)
	apiRouter.HandleFunc("/watch-parties/{partyID:[0-9]+}", partyHandler.GetParty).Methods(http.MethodGet)
	apiRouter.HandleFunc("/watch-parties/{partyID:[0-9]+}/progress", partyHandler.UpdateProgress).Methods(http.MethodPut)

	// Notifications
	apiRouter.HandleFunc("/notifications", notificationHandler.ListNotifications).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notifications/{notificationID:[0-9]+}/read", notificationHandler.MarkRead).Methods(http.MethodPost)

	// Media metadata proxy
	mediaRouter := apiRouter.PathPrefix("/media").Subrouter()
	mediaRouter.HandleFunc("/search", mediaHandler.Search).Methods(http.MethodGet)
	mediaRouter.HandleFunc("/discover/{mediaType}", mediaHandler.Discover).Methods(http.MethodGet)
	mediaRouter.HandleFunc("/{mediaType}/{tmdbID:[0-9]+}", mediaHandler.Details).Methods(http.MethodGet)
	mediaRouter.HandleFunc("/{mediaType}/{tmdbID:[0-9]+}/watch-providers", mediaHandler.WatchProviders).Methods(http.MethodGet)
	mediaRouter.HandleFunc("/{mediaType}/{tmdbID:[0-9]+}/credits", mediaHandler.Credits).Methods(http.MethodGet)

	// 11. Kafka consumers
	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	defer cancelConsumers()

	friendReqConsumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		log.Fatalf("Failed to create friend request Kafka consumer: %v", err)
	}
	defer friendReqConsumer.Close()

	friendReqLogic := kafkahandlers.NewFriendRequestConsumerLogic(friendReqService)
	go func() {
		topics := []string{cfg.Kafka.FriendRequestTopic}
		log.Printf("Friend request consumer listening on topic %s, group %s", cfg.Kafka.FriendRequestTopic, cfg.Kafka.ConsumerGroup)
		err := friendReqConsumer.Consume(consumerCtx, topics, cfg.Kafka.ConsumerGroup, friendReqLogic.HandleFriendRequest)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Friend request consumer error: %v", err)
		}
		log.Println("Friend request consumer stopped.")
	}()

	inviteConsumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		log.Fatalf("Failed to create watch party invite Kafka consumer: %v", err)
	}
	defer inviteConsumer.Close()

	inviteLogic := kafkahandlers.NewWatchPartyInviteConsumerLogic(notificationService)
	go func() {
		topics := []string{cfg.Kafka.WatchPartyInviteTopic}
		log.Printf("Watch party invite consumer listening on topic %s, group %s", cfg.Kafka.WatchPartyInviteTopic, cfg.Kafka.ConsumerGroup)
		err := inviteConsumer.Consume(consumerCtx, topics, cfg.Kafka.ConsumerGroup, inviteLogic.HandleWatchPartyInvite)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Watch party invite consumer error: %v", err)
		}
		log.Println("Watch party invite consumer stopped.")
	}()

	// 12. HTTP server with graceful shutdown
	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)

	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsHandler := handlers.CORS(corsOptions...)(r)

	srv := &http.Server{
		Addr:           serverAddr,
		Handler:        corsHandler,
		ReadTimeout:    cfg.APIServer.ReadTimeout,
		WriteTimeout:   cfg.APIServer.WriteTimeout,
		IdleTimeout:    time.Second * 60,
		MaxHeaderBytes: cfg.APIServer.MaxHeaderBytes,
	}

	go func() {
		log.Printf("API server listening on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, stopping API server...")

	cancelConsumers()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("API server forced to shut down: %v", err)
	}

	log.Println("API server stopped cleanly.")
}
