package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/copilot-learning/backend/internal/auth"
	"github.com/copilot-learning/backend/internal/catalog"
	"github.com/copilot-learning/backend/internal/certificate"
	"github.com/copilot-learning/backend/internal/coach"
	"github.com/copilot-learning/backend/internal/config"
	"github.com/copilot-learning/backend/internal/database"
	"github.com/copilot-learning/backend/internal/middleware"
	"github.com/copilot-learning/backend/internal/progress"
	"github.com/copilot-learning/backend/internal/stats"
	"github.com/copilot-learning/backend/internal/store"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()
	middleware.JWTSecret = []byte(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: remote Postgres, then the on-disk cache, then memory
	remote, remoteDB := openRemote(cfg)
	if remoteDB != nil {
		defer remoteDB.Close()
	}
	local, localDB := openLocal(cfg)
	if localDB != nil {
		defer localDB.Close()
	}

	selectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	var remoteStore, localStore store.Store
	if remote != nil {
		remoteStore = remote
	}
	if local != nil {
		localStore = local
	}
	active := store.Select(selectCtx, remoteStore, localStore)
	cancel()

	if remote != nil && local != nil && active == store.Store(local) {
		replicator := store.NewReplicator(local, remote, cfg.SyncSchedule)
		replicator.Prepare(func(ctx context.Context) error {
			return database.MigratePostgres(remoteDB)
		})
		if err := replicator.Start(ctx); err != nil {
			log.Printf("[sync] disabled: %v", err)
		}
	}

	sessions := openSessions(ctx, cfg)
	log.Printf("[progress] session store: %s, question timers: %v", sessions.Name(), cfg.QuestionTimers)

	// Services
	bank := catalog.Default()
	progressService := progress.NewService(bank, active, sessions, cfg.QuestionTimers)
	statsService := stats.NewService(active, progressService)
	certService := certificate.NewService(active, statsService)
	progressService.OnComplete(certService.HandleCompletion)

	llm, model := coach.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.MockCoach)
	coachService := coach.NewService(bank, active, llm, model)

	// Handlers
	authHandler := auth.NewHandler(active, progressService, cfg.AdminPasswordHash)
	catalogHandler := catalog.NewHandler(bank)
	progressHandler := progress.NewHandler(progressService)
	statsHandler := stats.NewHandler(statsService)
	certHandler := certificate.NewHandler(certService)
	coachHandler := coach.NewHandler(coachService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	authHandler.RegisterPublicRoutes(api)
	catalogHandler.RegisterRoutes(api)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware, middleware.AdminMiddleware)
	statsHandler.RegisterAdminRoutes(admin)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware, middleware.LearnerMiddleware)
	authHandler.RegisterRoutes(protected)
	progressHandler.RegisterRoutes(protected)
	statsHandler.RegisterRoutes(protected)
	certHandler.RegisterRoutes(protected)
	coachHandler.RegisterRoutes(protected)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","store":"` + active.Name() + `"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	progressService.Shutdown()
}

// openRemote returns the Postgres store, migrated when it is reachable now.
// An unreachable database still yields a handle so the cache can be synced
// to it later.
func openRemote(cfg *config.Config) (*store.SQLStore, *sql.DB) {
	if cfg.DBDisabled {
		log.Println("[store] remote database disabled")
		return nil, nil
	}

	db, err := database.Connect()
	if err != nil {
		log.Printf("[store] remote database unavailable: %v", err)
		if db, err = database.Open(); err != nil {
			log.Printf("[store] remote database disabled: %v", err)
			return nil, nil
		}
		return store.NewSQLStore(db, store.Postgres), db
	}

	if err := database.MigratePostgres(db); err != nil {
		log.Printf("[store] postgres migrations failed: %v", err)
		db.Close()
		return nil, nil
	}
	return store.NewSQLStore(db, store.Postgres), db
}

func openLocal(cfg *config.Config) (*store.SQLStore, *sql.DB) {
	db, err := database.OpenSQLite(cfg.LocalCachePath)
	if err != nil {
		log.Printf("[store] local cache unavailable: %v", err)
		return nil, nil
	}
	if err := database.MigrateSQLite(db); err != nil {
		log.Printf("[store] sqlite migrations failed: %v", err)
		db.Close()
		return nil, nil
	}
	return store.NewSQLStore(db, store.SQLite), db
}

func openSessions(ctx context.Context, cfg *config.Config) progress.SessionStore {
	if cfg.RedisURL == "" {
		return progress.NewMemorySessions()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	client, err := progress.ConnectRedis(pingCtx, cfg.RedisURL)
	if err != nil {
		log.Printf("[progress] redis unavailable, keeping sessions in memory: %v", err)
		return progress.NewMemorySessions()
	}
	return progress.NewRedisSessions(client, cfg.SessionTTL)
}
