package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"spendly/backend/config"
	"spendly/backend/firebase"
	"spendly/backend/handlers"
	"spendly/backend/middleware"
	"spendly/backend/services"
	"spendly/backend/session"
	"spendly/backend/store"
	"spendly/backend/websocket"
)

func main() {
	cfg := config.Load()

	// Initialize the vendor backend. Missing configuration is fatal
	// in production; elsewhere the service degrades to inert
	// backends so the API surface stays inspectable.
	ctx := context.Background()
	fb, backend := initBackend(ctx, cfg)

	opts := session.Options{
		APIKey:         cfg.FirebaseAPIKey,
		Backend:        backend,
		Disabled:       fb.Disabled(),
		ExpiryInterval: cfg.SessionSweepInterval,
	}
	if !fb.Disabled() {
		opts.Revoker = fb.Auth
	}
	sessions := session.NewManager(opts)
	defer sessions.Close()

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	workspaces := services.NewWorkspaceManager(backend, sessions, hub)
	defer workspaces.Close()

	var verifier middleware.TokenVerifier
	if !fb.Disabled() {
		verifier = fb.Auth
	}
	authn := middleware.NewAuthenticator(verifier)

	// Create router
	r := mux.NewRouter()
	r.Use(middleware.EnableCORS)

	registerRoutes(r, authn, sessions, workspaces, hub)
	apiRouter := r.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, authn, sessions, workspaces, hub)

	srv := &http.Server{
		Handler:      r,
		Addr:         ":" + cfg.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Printf("Starting server on port %s...", cfg.Port)
	log.Fatal(srv.ListenAndServe())
}

func initBackend(ctx context.Context, cfg *config.Config) (*firebase.Client, store.DocumentStore) {
	if err := cfg.Validate(); err != nil {
		if cfg.IsProduction() {
			log.Fatal(err)
		}
		log.Printf("Warning: %v", err)
		log.Println("Running without a configured backend - auth checks disabled, writes rejected")
		return firebase.NewDisabledClient(), store.NewDisabledStore()
	}

	fb, err := firebase.Init(ctx, cfg)
	if err != nil {
		if cfg.IsProduction() {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		log.Printf("Warning: Failed to initialize Firebase: %v", err)
		log.Println("Running without a configured backend - auth checks disabled, writes rejected")
		return firebase.NewDisabledClient(), store.NewDisabledStore()
	}

	return fb, store.NewFirestoreStore(fb.Firestore)
}

// registerRoutes sets up all API routes
func registerRoutes(r *mux.Router, authn *middleware.Authenticator, sessions *session.Manager, workspaces *services.WorkspaceManager, hub *websocket.Hub) {
	authHandler := handlers.NewAuthHandler(sessions)
	expenseHandler := handlers.NewExpenseHandler(workspaces)
	categoryHandler := handlers.NewCategoryHandler(workspaces)
	analyticsHandler := handlers.NewAnalyticsHandler(workspaces)

	// Public routes (no auth required)
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/categories/defaults", categoryHandler.Defaults).Methods("GET", "OPTIONS")

	// Create a subrouter for authenticated routes
	protectedRouter := r.PathPrefix("").Subrouter()
	protectedRouter.Use(authn.Middleware)

	protectedRouter.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	// Protected expense routes
	protectedRouter.HandleFunc("/expenses", expenseHandler.List).Methods("GET")
	protectedRouter.HandleFunc("/expenses", expenseHandler.Add).Methods("POST")
	protectedRouter.HandleFunc("/expenses/{id}", expenseHandler.Update).Methods("PUT")
	protectedRouter.HandleFunc("/expenses/{id}", expenseHandler.Delete).Methods("DELETE")

	// Protected category routes
	protectedRouter.HandleFunc("/categories", categoryHandler.List).Methods("GET")
	protectedRouter.HandleFunc("/categories", categoryHandler.Add).Methods("POST")
	protectedRouter.HandleFunc("/categories/seed", categoryHandler.Seed).Methods("POST")
	protectedRouter.HandleFunc("/categories/{id}", categoryHandler.Update).Methods("PUT")
	protectedRouter.HandleFunc("/categories/{id}", categoryHandler.Delete).Methods("DELETE")

	// Analytics routes
	protectedRouter.HandleFunc("/analytics/monthly-total", analyticsHandler.MonthlyTotal).Methods("GET")
	protectedRouter.HandleFunc("/analytics/breakdown", analyticsHandler.CategoryBreakdown).Methods("GET")
	protectedRouter.HandleFunc("/analytics/trend", analyticsHandler.MonthlyTrend).Methods("GET")

	// Live snapshot notifications
	protectedRouter.HandleFunc("/ws", websocket.Handler(hub)).Methods("GET")
}
