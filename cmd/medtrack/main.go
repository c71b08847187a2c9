package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/medtrack/internal/api"
	"github.com/terraincognita07/medtrack/internal/cli"
	"github.com/terraincognita07/medtrack/internal/config"
	"github.com/terraincognita07/medtrack/internal/db"
	"github.com/terraincognita07/medtrack/internal/logging"
	"github.com/terraincognita07/medtrack/internal/realtime"
	"github.com/terraincognita07/medtrack/internal/services"
	"github.com/terraincognita07/medtrack/internal/storage"
	"github.com/terraincognita07/medtrack/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "medtrack",
		Short:        "Medication adherence tracking for patients and caretakers",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(resetPasswordCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(true)
			if err != nil {
				return err
			}
			return runServer(cfg, logger)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(false)
			if err != nil {
				return err
			}
			database, err := db.OpenSQLite(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			if sqlDB, err := database.DB(); err == nil {
				_ = sqlDB.Close()
			}
			logger.Info().Str("db", cfg.DBPath).Msg("database is up to date")
			return nil
		},
	}
}

func resetPasswordCmd() *cobra.Command {
	var (
		email       string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a user's password; the user must change it after signing in",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(false)
			if err != nil {
				return err
			}
			return cli.RunResetPasswordCommand(cfg.DBPath, cli.ResetOptions{
				Email:       email,
				Interactive: interactive,
				Stdin:       os.Stdin,
				Out:         cmd.OutOrStdout(),
			}, logger)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the account to reset")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "type the new password instead of generating one")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// loadRuntime reads configuration and builds the logger. Only the server
// needs the full validation; operator commands just need the database path.
func loadRuntime(validate bool) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, zerolog.Nop(), fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat), nil
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	location, ok := cfg.Location()
	if !ok {
		logger.Warn().Str("tz", cfg.TimeZone).Msg("invalid TZ, falling back to UTC")
	}

	database, err := db.OpenSQLite(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()
	repos := db.NewRepositories(database)

	photos, err := storage.NewDiskPhotoStore(cfg.PhotoDir, cfg.PhotoMaxBytes)
	if err != nil {
		return fmt.Errorf("photo store init failed: %w", err)
	}

	metrics, err := telemetry.NewProvider(logger)
	if err != nil {
		return fmt.Errorf("telemetry init failed: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = metrics.Shutdown(shutdownCtx)
	}()

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()

	hub := realtime.NewHub()
	broker := connectBroker(lifecycleCtx, cfg.RabbitMQURL, hub, logger)
	if broker != nil {
		defer broker.Close()
	}

	var publisher realtime.EventPublisher
	if broker != nil {
		publisher = broker
	}
	notifier := realtime.NewNotifier(hub, publisher, logger)
	defer notifier.Wait()

	intakes := services.NewIntakeService(repos.IntakeRecords, photos, location, services.IntakeServiceOptions{
		Notifier:      notifier,
		Metrics:       metrics.Metrics,
		AllowBackfill: cfg.AllowBackfill,
	})
	links := services.NewLinkService(repos.Users, repos.CaretakerLinks)

	handler, err := api.NewHandler(api.Dependencies{
		Auth:          services.NewAuthService(repos.Users),
		Intakes:       intakes,
		Links:         links,
		Summaries:     services.NewSummaryService(intakes, repos.Users, links, metrics.Metrics, location),
		Photos:        photos,
		Hub:           hub,
		Metrics:       metrics.Metrics,
		MetricsSource: metrics,
	}, api.Options{
		SecretKey:     cfg.SecretKey,
		CookieSecure:  cfg.CookieSecure,
		PhotoMaxBytes: cfg.PhotoMaxBytes,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := api.NewApp(handler, api.AppOptions{
		Logger:       logger,
		EnableCSRF:   true,
		CookieSecure: cfg.CookieSecure,
	})

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		logger.Info().Msg("shutting down")
		cancelLifecycle()
		handler.CloseStreams()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	logger.Info().
		Str("addr", "0.0.0.0:"+cfg.Port).
		Str("db", cfg.DBPath).
		Str("tz", location.String()).
		Bool("broker", broker != nil).
		Msg("medtrack listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

// connectBroker joins the RabbitMQ exchange when configured. A broker that
// cannot be reached leaves the instance running on its local hub only.
func connectBroker(ctx context.Context, rawURL string, hub *realtime.Hub, logger zerolog.Logger) *realtime.RabbitMQ {
	if rawURL == "" {
		return nil
	}

	broker, err := realtime.DialRabbitMQ(rawURL, uuid.NewString(), logger)
	if err != nil {
		logger.Warn().Err(err).Msg("rabbitmq unavailable, change notifications stay local")
		return nil
	}

	go func() {
		if err := broker.Consume(ctx, hub); err != nil {
			logger.Error().Err(err).Msg("rabbitmq consumer stopped")
		}
	}()
	return broker
}
