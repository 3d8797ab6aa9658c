package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vitacasa-care/community-service/internal/audit"
	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/db"
	"github.com/vitacasa-care/community-service/internal/gateway"
	httpserver "github.com/vitacasa-care/community-service/internal/http"
	"github.com/vitacasa-care/community-service/internal/medication"
	"github.com/vitacasa-care/community-service/internal/messaging"
	"github.com/vitacasa-care/community-service/internal/mirror"
	"github.com/vitacasa-care/community-service/internal/notify"
	"github.com/vitacasa-care/community-service/internal/store"
	"github.com/vitacasa-care/community-service/internal/telemetry"
)

const (
	refreshInterval = 60 * time.Second
	scanInterval    = 60 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry
	otelProvider, err := telemetry.InitProvider(ctx, telemetry.LoadConfig())
	if err != nil {
		log.Printf("Warning: OpenTelemetry initialization failed: %v", err)
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := otelProvider.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error shutting down OpenTelemetry: %v", err)
			}
		}()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Warning: failed to initialize custom metrics: %v", err)
	}

	// Database and schema
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := gateway.EnsureSchema(ctx, database); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}
	gw := gateway.NewPostgres(database)

	// Local mirror
	mirrorPath := os.Getenv("MIRROR_PATH")
	if mirrorPath == "" {
		mirrorPath = "data/mirror.json"
	}
	m, err := mirror.Open(mirrorPath)
	if err != nil {
		log.Fatalf("Failed to open mirror at %s: %v", mirrorPath, err)
	}
	log.Printf("✓ Local mirror at %s", mirrorPath)

	// Reconciling store
	center := notify.NewCenter()
	st := store.New(gw, m, center)
	if metrics != nil {
		st.SetMetrics(metrics)
	}
	st.SetAudit(audit.NewRecorder(gw))

	// RabbitMQ: publisher for change events, subscriber for reloads. Both are
	// optional; the store works without them.
	publisher, err := messaging.NewPublisher()
	if err != nil {
		log.Printf("Warning: RabbitMQ publisher unavailable: %v", err)
		log.Println("Service will continue without event publishing")
	} else {
		defer publisher.Close()
	}
	changePublisher := messaging.NewChangePublisher(publisher)
	st.SetPublisher(changePublisher)

	subscriber, err := messaging.NewSubscriber()
	if err != nil {
		log.Printf("Warning: RabbitMQ subscriber unavailable: %v", err)
		log.Println("Service will continue without push reloads")
	} else {
		defer subscriber.Close()
		if err := subscriber.Start(ctx, st); err != nil {
			log.Printf("Warning: failed to start change subscriber: %v", err)
		}
	}

	// Auth
	authCfg := auth.LoadConfig()
	if !authCfg.Valid() {
		log.Println("Warning: AUTH_SECRET not set, logins will fail with ENV_INVALID")
	}
	verifier := auth.NewVerifier(authCfg)
	authService := auth.NewService(authCfg, auth.NewRepository(database), verifier, st)

	presetsPath := os.Getenv("PERMISSIONS_FILE")
	if presetsPath == "" {
		presetsPath = "permissions.yml"
	}
	if presets, err := auth.LoadPresets(presetsPath); err != nil {
		log.Printf("Warning: no permission presets loaded from %s: %v", presetsPath, err)
	} else {
		authService.SetPresets(presets)
		log.Printf("✓ Permission presets loaded from %s", presetsPath)
	}

	// Background loops
	st.StartRefresher(ctx, refreshInterval)
	scanner := medication.NewScanner(st, center, changePublisher)
	scanner.Start(ctx, scanInterval)

	// HTTP
	router := httpserver.SetupRouter(httpserver.Deps{
		DB:          database,
		Verifier:    verifier,
		AuthService: authService,
		Store:       st,
		Notify:      center,
		Metrics:     metrics,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      httpserver.CORSMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("community-service starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}
	log.Println("✓ Server stopped")
}
