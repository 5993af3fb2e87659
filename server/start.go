package server

import (
	"net/http"
	"os"

	cachepackage "marketplace-service/cache"
	"marketplace-service/config"
	"marketplace-service/database"
	"marketplace-service/handlers"
	"marketplace-service/middleware"
	"marketplace-service/storage"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// NewRouter builds the full route table. Public routes are registered ahead
// of the token-gated subrouter; the readiness gate wraps everything.
func NewRouter(deps Deps) *mux.Router {
	userHandler := handlers.NewUserHandler(deps.DB, deps.Cache)
	adHandler := handlers.NewAdHandler(deps.DB, deps.Cache, deps.Images)
	conversationHandler := handlers.NewConversationHandler(deps.DB)
	messageHandler := handlers.NewMessageHandler(deps.DB)

	router := mux.NewRouter()
	router.Use(middleware.Ready(deps.DB))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "service": "marketplace-service"}`))
	}).Methods("GET").Name("HealthCheck")

	router.HandleFunc("/users/create", userHandler.Register).Methods("POST").Name("Register")
	router.HandleFunc("/sessions", userHandler.Login).Methods("POST").Name("Login")
	router.HandleFunc("/seller/{id}", userHandler.Seller).Methods("GET").Name("GetSeller")
	router.HandleFunc("/posts", adHandler.ListAds).Methods("GET").Name("ListAds")

	if deps.ImageDir != "" {
		router.PathPrefix("/images/").Handler(
			http.StripPrefix("/images/", http.FileServer(http.Dir(deps.ImageDir))))
	}

	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.Auth(deps.DB))
	protected.HandleFunc("/posts", adHandler.CreateAd).Methods("POST").Name("CreateAd")
	protected.HandleFunc("/posts/{id}", adHandler.DeleteAd).Methods("DELETE").Name("DeleteAd")
	protected.HandleFunc("/conversation", conversationHandler.CreateConversation).Methods("POST").Name("CreateConversation")
	protected.HandleFunc("/conversations", conversationHandler.ListConversations).Methods("GET").Name("ListConversations")
	protected.HandleFunc("/conversation/{id}", conversationHandler.GetConversationDetail).Methods("GET").Name("GetConversationDetail")
	protected.HandleFunc("/message", messageHandler.SendMessage).Methods("POST").Name("SendMessage")

	return router
}

// Deps carries everything the route table needs; tests build their own.
type Deps struct {
	DB       *sqlx.DB
	Cache    cache.Cache
	Images   storage.ImageStore
	ImageDir string
}

func StartServer() {
	// Initialize logger
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})

	logger.Info("Starting Marketplace Service...")

	cfg := config.Load()

	// Initialize database
	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	// Initialize cache
	cacheConn := cachepackage.InitializeCache(cfg)
	defer cacheConn.Close()

	// Initialize image store
	images, err := storage.NewDiskStore(cfg.ImageDir, cfg.ImageBaseURL)
	if err != nil {
		logger.Error("Failed to initialize image store", zap.Error(err))
		os.Exit(1)
	}

	router := NewRouter(Deps{
		DB:       dbConn,
		Cache:    cacheConn,
		Images:   images,
		ImageDir: cfg.ImageDir,
	})

	logger.Info("Marketplace Service started", zap.String("port", cfg.Port))
	logger.Info("Health check: GET /health")

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}
