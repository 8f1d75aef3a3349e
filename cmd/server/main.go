/*
Package main is the entry point for the phonebook server.

It is responsible for loading configuration, initializing the global logging system,
opening the contact store and the optional photo bucket, setting up the HTTP server
and the live form session manager, and gracefully handling operating system interrupt
signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"phonebook/internal/app/account"
	"phonebook/internal/app/contact"
	"phonebook/internal/app/db"
	"phonebook/internal/app/form"
	"phonebook/internal/app/live"
	"phonebook/internal/app/storage"
	"phonebook/internal/configs"
	"phonebook/internal/handler"
	"phonebook/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("db_driver", cfg.DBDriver).
		Bool("photos_enabled", cfg.PhotosEnabled()).
		Dur("form_submit_timeout", cfg.FormSubmitTimeout).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logx.Fatal(err, "Server stopped with error")
	}

	logx.Info("Server gracefully stopped.")
}

func run(ctx context.Context, cfg *configs.AppConfig) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var photos storage.PhotoStore
	if cfg.PhotosEnabled() {
		photos, err = storage.NewPhotoStore(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:     cfg.S3PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize photo storage: %w", err)
		}
	} else {
		logx.Warn("S3 storage is not configured, profile photo uploads are disabled")
	}

	registry := form.DefaultRegistry()
	registerSchema, err := registry.Schema(form.KindRegister)
	if err != nil {
		return err
	}
	contactSchema, err := registry.Schema(form.KindContact)
	if err != nil {
		return err
	}

	authLimiter, contactLimiter, formLimiter := handler.NewLimiters()
	defer authLimiter.Close()
	defer contactLimiter.Close()
	defer formLimiter.Close()

	// Remote calls of live forms outlive the request that opened the socket, but not the server.
	liveCtx, cancelLive := context.WithCancel(context.Background())
	defer cancelLive()
	manager := live.NewManager(liveCtx, cfg.FormSubmitTimeout)

	deps := &handler.AppDeps{
		Config: cfg,
		Accounts: account.NewService(account.Config{
			Store:     store,
			JWTSecret: cfg.JWTSecret,
			Photos:    photos,
			Validator: registerSchema,
		}),
		Contacts:       contact.NewService(store, contactSchema),
		Forms:          registry,
		Live:           manager,
		AuthLimiter:    authLimiter,
		ContactLimiter: contactLimiter,
		FormLimiter:    formLimiter,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logx.Info(fmt.Sprintf("Phonebook Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// Wait for interrupt signal (or a failed listener) to gracefully shutdown the server with a timeout of 5 seconds.
		<-gCtx.Done()
		logx.Info("Received shutdown signal. Starting graceful shutdown...")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()

		err := server.Shutdown(shutdownCtx)
		cancelLive()
		manager.Shutdown()

		if err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openStore returns the configured contact store and the function releasing it.
func openStore(ctx context.Context, cfg *configs.AppConfig) (db.Store, func(), error) {
	if cfg.DBDriver == configs.DriverMemory {
		logx.Warn("Using the in-memory store, data is lost on restart")
		return db.NewMemoryStore(), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	return db.New(pool), pool.Close, nil
}
