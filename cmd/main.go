package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Pantry-Service/cmd/config"
	migration "Pantry-Service/cmd/database/migrate"
	"Pantry-Service/domain"
	"Pantry-Service/internal/utils"
	"Pantry-Service/pkg/jwt"
	"Pantry-Service/pkg/logger"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pantry",
	Short: "Household pantry service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := utils.LoadConfig(configPath); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the freshness scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseLogger := logger.Must(logger.New(utils.GetConfig("APP_ENV")))
		defer func() { _ = baseLogger.Sync() }()

		zap.ReplaceGlobals(baseLogger)

		db, err := config.ConnectDB()
		if err != nil {
			return err
		}

		migrateFirst, _ := cmd.Flags().GetBool("migrate")
		if migrateFirst {
			if err := migration.Migrate(db); err != nil {
				return err
			}
			baseLogger.Info("database migration complete")
		}

		app, err := config.NewApp(db, baseLogger)
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer func() { _ = app.Close() }()

		if err := app.Scheduler.Start(); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer app.Scheduler.Stop()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			port := utils.GetConfig("APP_PORT")
			baseLogger.Info("server starting", zap.String("port", port))
			errCh <- app.Fiber.Listen(":" + port)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				baseLogger.Error("http server crashed", zap.Error(err))
			}
			return err
		case <-ctx.Done():
			baseLogger.Info("shutdown signal received")
		}

		if err := app.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
			baseLogger.Error("graceful shutdown failed", zap.Error(err))
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.ConnectDB()
		if err != nil {
			return err
		}

		if err := migration.Migrate(db); err != nil {
			return err
		}

		fmt.Println("Database migration complete")
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token USER_ID",
	Short: "Issue an access token for a household member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := utils.GetConfig("JWT_SECRET")
		if secret == "" {
			return errors.New("JWT_SECRET is not set")
		}

		token, err := jwt.NewJWTService(secret).GenerateTokenUser(args[0], domain.RoleUser)
		if err != nil {
			return fmt.Errorf("generating token: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", false, "Run migrations before serving")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}
