package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/findit/backend/internal/config"
	"github.com/findit/backend/internal/handlers"
	appMiddleware "github.com/findit/backend/internal/middleware"
	"github.com/findit/backend/internal/ratelimit"
	"github.com/findit/backend/internal/services"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, db, err := services.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	// Firebase Auth (server-side verification of ID tokens) is optional;
	// without it the local JWT flow still works.
	firebaseAuth, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsJSON: cfg.FirebaseCredentialsJSON,
	})
	if err != nil {
		log.Printf("Warning: failed to initialize Firebase Auth client: %v", err)
	}

	// Stores
	itemService := services.NewMongoItemService(ctx, db)
	matchService := services.NewMongoMatchService(ctx, db)
	notificationService := services.NewMongoNotificationService(ctx, db)
	userService := services.NewMongoUserService(ctx, db)
	returnedService := services.NewMongoReturnedItemService(ctx, db)
	messageService := services.NewMongoMessageService(ctx, db)

	// Oracles
	similarity := services.NewSimilarityClient(cfg.MatcherURL, cfg.MatcherTimeout)
	faces := services.NewFaceClient(cfg.FaceAPIURL, cfg.FaceAPIKey, 0)

	engine := services.NewMatchEngine(
		itemService,
		matchService,
		notificationService,
		userService,
		returnedService,
		similarity,
		faces,
		cfg.MatchThreshold,
	)

	loginLimiter := ratelimit.NewKeyedLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow)
	defer loginLimiter.Close()

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, loginLimiter, cfg.JWTSecret, cfg.JWTExpiration)
	itemHandler := handlers.NewItemHandler(itemService, engine, cfg.MaxUploadSizeMB)
	matchHandler := handlers.NewMatchHandler(engine)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	returnHandler := handlers.NewReturnHandler(engine, returnedService)
	messageHandler := handlers.NewMessageHandler(messageService, userService)
	dashboardHandler := handlers.NewDashboardHandler(engine)

	jwtAuth := appMiddleware.JWTAuth(cfg.JWTSecret)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/check", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Server is running"))
	})

	// Public routes
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Get("/profile/{userId}", authHandler.GetProfile)
	r.Get("/search-users", authHandler.SearchUsers)

	r.Get("/lostitem/{id}", itemHandler.GetLostItem)
	r.Get("/founditem/{id}", itemHandler.GetFoundItem)
	r.Post("/lostitem/search", matchHandler.FaceSearch)

	r.Get("/match/{matchId}", matchHandler.GetMatch)
	r.Get("/notifications/{userId}", notificationHandler.ListForUser)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(jwtAuth)

		r.Put("/profile/{userId}", authHandler.UpdateProfile)

		r.Post("/reportfound", itemHandler.ReportFound)
		r.Post("/lostitem", itemHandler.ReportLost)
		r.Post("/repost-lost-item/{id}", itemHandler.RepostLostItem)

		r.Put("/update-match-status/{matchId}", matchHandler.UpdateMatchStatus)
		r.Post("/return-item", returnHandler.ReturnItem)

		// Archive snapshots carry owner details, photos and return notes.
		r.Get("/returned-items", returnHandler.ListReturned)
		r.Get("/user-returned-items/{userId}", returnHandler.ListForUser)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard/stats", dashboardHandler.Stats)

		r.Group(func(r chi.Router) {
			// Firebase-signed mobile clients get their own auth path when a
			// project is configured.
			if firebaseAuth != nil && cfg.FirebaseProjectID != "" {
				r.Use(appMiddleware.FirebaseAuth(firebaseAuth))
			} else {
				r.Use(jwtAuth)
			}

			r.Get("/view-matches", matchHandler.ViewMatches)
			r.Post("/record-match", matchHandler.RecordMatch)

			r.Put("/notifications/{id}/read", notificationHandler.MarkRead)

			r.Post("/messages", messageHandler.Send)
			r.Get("/messages/{userId}", messageHandler.Conversations)
			r.Get("/messages/{userId}/{partnerId}", messageHandler.Thread)
		})
	})

	log.Printf("FindIt API server starting on %s (match threshold %.2f)", cfg.ServerAddress, cfg.MatchThreshold)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
