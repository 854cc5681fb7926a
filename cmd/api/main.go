// cmd/api/main.go

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborlink/ops-backend/internal/chat"
	"github.com/harborlink/ops-backend/internal/common/database"
	"github.com/harborlink/ops-backend/internal/config"
	"github.com/harborlink/ops-backend/internal/identity"
	"github.com/harborlink/ops-backend/internal/team"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// 1. Environment and configuration
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (%v), using environment variables", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: ", err)
	}

	// 2. PostgreSQL
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// 3. Redis (optional; enables cross-instance fan-out and durable presence)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable (%v), running single-instance", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("Connected to Redis")
		}
	}

	// 4. Migrations
	if err := runMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Println("Database migrations completed")

	// 5. Identity
	resolver := identity.NewJWTResolver(cfg.JWTSecret)
	authMiddleware := identity.NewMiddleware(resolver)

	// 6. Chat engine
	chatRepo := chat.NewPostgresRepository(db)
	registry := chat.NewRegistry(chatRepo)
	chatService := chat.NewService(chatRepo, registry)

	var presence chat.PresenceTracker
	if redisClient != nil {
		presence = chat.NewRedisPresence(redisClient)
	} else {
		presence = chat.NewMemoryPresence()
	}

	hub := chat.NewHub(presence)

	var relay *chat.RedisRelay
	if redisClient != nil {
		relay = chat.NewRedisRelay(redisClient, cfg.BroadcastChannel)
		hub.SetRelay(relay)
		relay.Listen(hub)
	}

	typing := chat.NewTypingCoordinator(cfg.TypingExpiry, func(roomID, userID int64) {
		hub.PublishRoom(roomID, chat.NewEvent(chat.EventStoppedTyping, chat.StoppedTypingPayload{
			RoomID: roomID,
			UserID: userID,
		}))
	})

	chatHandler := chat.NewHandler(chatService, hub, typing, cfg.SendBufferSize, cfg.ReadLimitBytes)

	// 7. Team module
	teamRepo := team.NewPostgresRepository(db)
	teamService := team.NewService(teamRepo, chatService, hub)
	teamHandler := team.NewHandler(teamService)

	// 8. Router
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck(hub)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	chat.RegisterRoutes(router, chatHandler, authMiddleware.Authenticate)
	team.RegisterRoutes(router, teamHandler, authMiddleware.Authenticate)

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 9. HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (environment: %s)", cfg.Port, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutdown signal received")

	if relay != nil {
		relay.Close()
	}
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exited gracefully")
}

func healthCheck(hub *chat.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"connections": hub.ActiveConnections(),
			"time":        time.Now().UTC(),
		})
	}
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations creates the schema on startup. All statements are idempotent.
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chat_rooms (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			description TEXT,
			type VARCHAR(20) NOT NULL DEFAULT 'group',
			created_by BIGINT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			last_message_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS chat_room_members (
			id BIGSERIAL PRIMARY KEY,
			room_id BIGINT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(room_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS chat_messages (
			id BIGSERIAL PRIMARY KEY,
			room_id BIGINT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
			sender_id BIGINT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			message_type VARCHAR(20) NOT NULL DEFAULT 'text',
			file_url TEXT,
			file_name TEXT,
			is_edited BOOLEAN NOT NULL DEFAULT FALSE,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			reply_to_id BIGINT REFERENCES chat_messages(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS chat_read_receipts (
			message_id BIGINT NOT NULL REFERENCES chat_messages(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL,
			read_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (message_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS announcements (
			id BIGSERIAL PRIMARY KEY,
			author_id BIGINT NOT NULL,
			room_id BIGINT REFERENCES chat_rooms(id) ON DELETE CASCADE,
			title VARCHAR(200) NOT NULL,
			body TEXT NOT NULL,
			priority VARCHAR(20) NOT NULL DEFAULT 'normal',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS survey_responses (
			id BIGSERIAL PRIMARY KEY,
			survey_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_chat_messages_room_id ON chat_messages(room_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_room_members_user ON chat_room_members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_read_receipts_user ON chat_read_receipts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_announcements_room ON announcements(room_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_survey_responses_survey ON survey_responses(survey_id)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
