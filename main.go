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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/cafe-queue/config"
	"github.com/yeremiapane/cafe-queue/database"
	"github.com/yeremiapane/cafe-queue/kds"
	"github.com/yeremiapane/cafe-queue/messaging"
	"github.com/yeremiapane/cafe-queue/middlewares"
	"github.com/yeremiapane/cafe-queue/router"
	"github.com/yeremiapane/cafe-queue/services"
	"github.com/yeremiapane/cafe-queue/utils"
	"gorm.io/gorm"
)

const cleanupInterval = 10 * time.Minute

func main() {
	rootCmd := &cobra.Command{
		Use:   "cafe-queue",
		Short: "coffee shop ordering and barista queue",
	}
	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		seedCommand(),
		createBaristaCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB loads config, configures logging and connects to the database.
func openDB() (config.Config, *gorm.DB, error) {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := config.InitDB(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			utils.InfoLogger.Info("AutoMigrate completed.")
			return nil
		},
	}
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "load the default catalog into empty tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			if err := database.Seed(db); err != nil {
				return err
			}
			utils.InfoLogger.Info("Seed completed.")
			return nil
		},
	}
}

func createBaristaCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create-barista [email] [password]",
		Short: "provision a barista account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			auth := services.NewAuthService(db, utils.NewTokenSigner(cfg.JWTSecret, cfg.TokenTTL), utils.NewMemoryBlacklist())
			user, err := auth.CreateBarista(cmd.Context(), name, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created barista %s (%s)\n", *user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Barista", "display name")
	return cmd
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API and barista websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			if cfg.UsesDefaultSecret() {
				utils.InfoLogger.Warn("JWT_SECRET is not set, using the built-in development secret")
			}
			return serve(cmd.Context(), cfg, db)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, db *gorm.DB) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var blacklist utils.TokenBlacklist
	if cfg.RedisAddr != "" {
		rdb := utils.NewRedisClient(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		blacklist = utils.NewRedisBlacklist(rdb)
	} else {
		mem := utils.NewMemoryBlacklist()
		go every(ctx, cleanupInterval, mem.Cleanup)
		blacklist = mem
	}

	hub := kds.NewHub()
	notifier := services.FanOut{hub}
	if cfg.RabbitMQURL != "" {
		publisher, err := messaging.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifier = append(notifier, publisher)
	}

	loginLimiter := middlewares.NewRateLimiter(cfg.LoginRatePerMinute)
	go every(ctx, cleanupInterval, func() { loginLimiter.Cleanup(cleanupInterval) })

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	signer := utils.NewTokenSigner(cfg.JWTSecret, cfg.TokenTTL)
	r := router.SetupRouter(router.Deps{
		Auth:         services.NewAuthService(db, signer, blacklist),
		Catalog:      services.NewCatalogService(db, notifier),
		Composer:     services.NewOrderComposer(db, notifier),
		Queue:        services.NewOrderQueue(db, notifier),
		Hub:          hub,
		LoginLimiter: loginLimiter,
		CORSOrigin:   cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func every(ctx context.Context, d time.Duration, fn func()) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
