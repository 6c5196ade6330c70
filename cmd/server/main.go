package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	emailPkg "planning/internal/adapters/email"
	web "planning/internal/adapters/http"
	"planning/internal/adapters/http/middleware"
	"planning/internal/adapters/storage"
	choiceStore "planning/internal/adapters/storage/choice"
	"planning/internal/adapters/supabase"
	"planning/internal/application/orchestrators"
	"planning/internal/connection"
	"planning/internal/localstore"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Durable local store: the single persistence point for connection
	// config and session records across restarts.
	local := localstore.New(envOrDefault("PLANNING_STATE_FILE", "planning-state.json"))

	// Connection manager: dials the hosted data service, or the local
	// sqlite store when PLANNING_DEV_DB is set (no hosted backend needed).
	var dial connection.Dialer
	if devDB := os.Getenv("PLANNING_DEV_DB"); devDB != "" {
		store, err := openDevStore(devDB)
		if err != nil {
			log.Fatalf("failed to open dev database: %v", err)
		}
		dial = func(connection.Config) (choiceStore.Store, error) { return store, nil }
		log.Printf("Using local dev store at %s", devDB)
	} else {
		dial = func(cfg connection.Config) (choiceStore.Store, error) {
			return supabase.New(cfg.URL, cfg.Key), nil
		}
	}

	manager := connection.NewManager(local, dial, connection.Options{
		// Demo-deployment convenience, deliberately opt-in.
		SeedDefaults: os.Getenv("PLANNING_SEED_DEFAULT_CONFIG") == "1",
	})
	manager.Start()

	sessions := middleware.NewSessionStore(local)

	// Configure decision notification sender
	services := &web.Services{
		Connection: manager,
		NotifyTo:   os.Getenv("PLANNING_NOTIFY_EMAIL"),
		NotifyFrom: envOrDefault("PLANNING_NOTIFY_FROM", "Planning des gardes <noreply@example.org>"),
	}
	if resendKey := os.Getenv("PLANNING_RESEND_KEY"); resendKey != "" {
		services.Sender = emailPkg.NewResendSender(resendKey, services.NotifyFrom)
		log.Println("Notification sender configured (Resend)")
	} else {
		services.Sender = emailPkg.NewNoopSender()
		log.Println("Notification sender configured (noop — set PLANNING_RESEND_KEY for real delivery)")
	}

	mux := web.NewMux("static", services, sessions)

	addr := envOrDefault("PLANNING_ADDR", ":8080")
	log.Printf("Planning %s starting on %s (env=%s)", version, addr, envOrDefault("PLANNING_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// openDevStore opens the local sqlite store and seeds synthetic choices so
// every screen renders without a hosted backend.
func openDevStore(path string) (*choiceStore.SQLiteStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := storage.InitDB(db); err != nil {
		return nil, err
	}

	store := choiceStore.NewSQLiteStore(db)
	if os.Getenv("PLANNING_ENV") != "production" {
		deps := orchestrators.SeedChoicesDeps{
			ChoiceStore: store,
			GenerateID:  func() string { return uuid.New().String() },
			Now:         time.Now,
		}
		if err := orchestrators.ExecuteSeedChoices(context.Background(), deps); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
