package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"streamscout/api"
	"streamscout/config"
	"streamscout/handlers"
	"streamscout/internal/auth"
	"streamscout/internal/database"
	"streamscout/services/ai"
	"streamscout/services/availability"
	"streamscout/services/billing"
	"streamscout/services/catalog"
	"streamscout/services/recommend"
	"streamscout/services/schedule"
	"streamscout/services/search"
	"streamscout/services/torrents"
	"streamscout/services/users"
	"streamscout/services/watchlist"
)

func main() {
	cfg := config.Load()

	if cfg.LogPath != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}))
	}

	if !cfg.HasCatalog() {
		log.Printf("[main] TMDB_BEARER is not set; search and trending will be unavailable")
	}

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("[main] database init failed: %v", err)
	}
	defer db.Close()

	userRepo := database.NewUserRepository(db.Connection())
	watchlistRepo := database.NewWatchlistRepository(db.Connection())
	billingRepo := database.NewBillingRepository(db.Connection())

	catalogClient := catalog.NewClient(cfg.CatalogBearer, "en-US", nil)
	availabilityClient := availability.NewClient(cfg.AvailabilityAPIKey, nil)
	aiClient := ai.NewClient(cfg.AIAPIKey, nil)
	torrentScraper := torrents.NewScraper("", !cfg.TorrentsDisabled, nil)
	scheduleClient := schedule.NewClient(nil)

	usersSvc := users.NewService(userRepo)
	watchlistSvc := watchlist.NewService(watchlistRepo)
	billingSvc := billing.NewService(userRepo, billingRepo)
	meter := billing.NewMeter(userRepo)
	aggregator := search.NewAggregator(catalogClient, availabilityClient, torrentScraper, aiClient)
	recommendSvc := recommend.NewService(aiClient, catalogClient, "")

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, auth.DefaultTokenLifetime)

	searchHandler := handlers.NewSearchHandler(aggregator, usersSvc)
	trendingHandler := handlers.NewTrendingHandler(catalogClient)
	scheduleHandler := handlers.NewScheduleHandler(scheduleClient)
	authHandler := handlers.NewAuthHandler(usersSvc, issuer)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistSvc)
	pricingHandler := handlers.NewPricingHandler(availabilityClient, meter)
	recommendationsHandler := handlers.NewRecommendationsHandler(recommendSvc, watchlistSvc, meter)
	billingHandler := handlers.NewBillingHandler(billingSvc)
	metaHandler := handlers.NewMetaHandler()

	requireAuth := api.RequireAuth(issuer, usersSvc)
	optionalAuth := api.OptionalAuth(issuer, usersSvc)

	// 30 searches per minute per client.
	searchLimiter := api.NewIPRateLimiter(rate.Every(2*time.Second), 30)

	router := mux.NewRouter()

	router.HandleFunc("/", metaHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/health", metaHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/disclaimer", metaHandler.Disclaimer).Methods(http.MethodGet)
	router.HandleFunc("/api/trending/top3", trendingHandler.Trending).Methods(http.MethodGet)
	router.HandleFunc("/api/tv/schedule", scheduleHandler.Schedule).Methods(http.MethodGet)
	router.HandleFunc("/api/billing/packages", billingHandler.Packages).Methods(http.MethodGet)

	router.HandleFunc("/api/auth/register", authHandler.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)

	searchRoutes := router.PathPrefix("/api/movies/search").Subrouter()
	searchRoutes.Use(optionalAuth)
	searchRoutes.HandleFunc("", api.RateLimitHandlerFunc(searchLimiter, searchHandler.Search)).Methods(http.MethodGet)
	searchRoutes.HandleFunc("/{title}", api.RateLimitHandlerFunc(searchLimiter, searchHandler.Search)).Methods(http.MethodGet)

	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(requireAuth)
	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/watchlist", watchlistHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/watchlist", watchlistHandler.Add).Methods(http.MethodPost)
	protected.HandleFunc("/watchlist/{titleId}", watchlistHandler.Contains).Methods(http.MethodGet)
	protected.HandleFunc("/watchlist/{titleId}", watchlistHandler.Remove).Methods(http.MethodDelete)
	protected.HandleFunc("/pricing/{titleId}", pricingHandler.Pricing).Methods(http.MethodGet)
	protected.HandleFunc("/recommendations", recommendationsHandler.Recommendations).Methods(http.MethodPost)
	protected.HandleFunc("/billing/purchase", billingHandler.Purchase).Methods(http.MethodPost)
	protected.HandleFunc("/billing/history", billingHandler.History).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      api.CORS(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.BindAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}
