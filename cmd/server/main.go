package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"giftcircle/internal/config"
	"giftcircle/internal/database"
	"giftcircle/internal/handlers"
	"giftcircle/internal/metrics"
	"giftcircle/internal/repository"
	"giftcircle/internal/security"
	"giftcircle/internal/service"
	"giftcircle/internal/session"
	"giftcircle/pkg/logger"
)

const (
	sweepInterval   = 5 * time.Minute
	limiterIdle     = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Server exited with error")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	log.WithField("type", cfg.DatabaseType).Info("Database connection established")

	if err := db.RunMigrations(ctx); err != nil {
		return err
	}
	log.Info("Migrations completed successfully")

	store := repository.NewSQLStore(db)

	var sessions session.Store
	if cfg.SessionSecret != "" {
		sessions = session.NewJWTStore(cfg.SessionSecret, cfg.SessionDuration)
		log.Info("Using signed session tokens")
	} else {
		sessions = session.NewMemoryStore(cfg.SessionDuration)
		log.Info("Using in-memory sessions")
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	mailer, err := service.NewEmailService(ctx, service.EmailConfig{
		AWSRegion:  cfg.AWSRegion,
		FromEmail:  cfg.SESFromEmail,
		FromName:   cfg.SESFromName,
		AppBaseURL: cfg.AppBaseURL,
		Debug:      cfg.EmailDebug,
	}, log)
	if err != nil {
		return err
	}

	// Initialize services
	authService := service.NewAuthService(store, sessions, log)
	svc := handlers.Services{
		Auth:       authService,
		Families:   service.NewFamilyService(store, sessions, mailer, log),
		Wishlists:  service.NewWishlistService(store, log, m, cfg.HideReservationsFromOwner),
		Activities: service.NewActivityService(store, log, cfg.HideReservationsFromOwner),
		Notes:      service.NewNoteService(store, log),
	}

	limiter := security.NewRateLimiter(cfg.RateLimitPerMinute)
	middleware := handlers.NewMiddleware(authService, limiter, m, cfg.CORSOrigin, log)

	opts := handlers.RouterOptions{DB: db}
	if m != nil {
		opts.Metrics = m.Handler()
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handlers.NewRouter(svc, middleware, opts, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sweep(gctx, sessions, limiter, m, log)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}

// sweep periodically drops expired sessions and idle rate limiter entries
func sweep(ctx context.Context, sessions session.Store, limiter *security.RateLimiter, m *metrics.Metrics, log logrus.FieldLogger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired := sessions.Sweep()
			idle := limiter.Cleanup(limiterIdle)
			if expired > 0 || idle > 0 {
				log.WithFields(logrus.Fields{
					"expired_sessions": expired,
					"idle_clients":     idle,
				}).Debug("Swept expired state")
			}

			if counted, ok := sessions.(interface{ Len() int }); ok {
				m.SetActiveSessions(counted.Len())
			}
		}
	}
}
