package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chat-service/internal/auth"
	"chat-service/internal/config"
	"chat-service/internal/database"
	"chat-service/internal/handlers"
	"chat-service/internal/presence"
	"chat-service/internal/services"
	"chat-service/internal/websocket"
	"chat-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize presence store
	store, err := presence.Open(cfg.Presence.Dir)
	if err != nil {
		logger.Fatal("Failed to open presence store: %v", err)
	}
	defer store.Close()

	// Initialize hub and services
	hub := websocket.NewHub()
	authService := auth.NewService(db, cfg)
	presenceService := services.NewPresenceService(authService, db, store, hub, cfg.Chat.PrivilegedLevel)
	messageService := services.NewMessageService(db, db, store, hub, cfg.Chat.PageLimit, cfg.Chat.PageLimitMax, cfg.Chat.PrivilegedLevel)

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	wsHandlers := handlers.NewWebSocketHandlers(presenceService, messageService, hub)

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("/login", authHandlers.Login)
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	logger.Info("Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
