package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pg "medication-tracker/internal/adapters/storage/postgres"
	lite "medication-tracker/internal/adapters/storage/sqlite"
	"medication-tracker/internal/config"
	"medication-tracker/internal/platform/logger"
	"medication-tracker/internal/router"

	"github.com/spf13/cobra"
)

// @title Medication Tracker API
// @version 1.0
// @description Registro de medicaciones, calendario de tomas y exportación iCalendar.
// @BasePath /
func main() {
	rootCmd := &cobra.Command{
		Use:           "medication-tracker",
		Short:         "Medication tracker web server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := newLogger(cfg)

	opts := router.Options{
		Logger:    log,
		SecretKey: cfg.SecretKey,
		Location:  cfg.Location(),
	}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := pg.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			n, err := pg.MigrateUp(ctx, db)
			if err != nil {
				return err
			}
			log.Info("migrations applied", map[string]any{"count": n})
		}
		opts.DB = db

	case config.StorageSQLite:
		gdb, err := lite.Open(ctx, cfg.DatabasePath, log)
		if err != nil {
			return err
		}
		defer func() { _ = lite.Close(gdb) }()
		opts.Gorm = gdb
	}

	h, err := router.NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":     srv.Addr,
			"storage":  cfg.StorageDriver,
			"timezone": cfg.Timezone,
			"env":      cfg.Env,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	log.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server stopped", nil)
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations (postgres)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationDB(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
				n, err := pg.MigrateUp(ctx, db)
				if err != nil {
					return err
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationDB(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
				statuses, err := pg.Status(db)
				if err != nil {
					return err
				}

				fmt.Printf("%-40s %-10s %s\n", "MIGRATION", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					status, appliedAt := "pending", ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("%-40s %-10s %s\n", s.ID, status, appliedAt)
				}
				return nil
			})
		},
	})

	return cmd
}

// withMigrationDB abre Postgres para los subcomandos de migrate. SQLite migra solo
// al abrir (AutoMigrate) y memory no tiene esquema.
func withMigrationDB(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return fmt.Errorf("migrate requires STORAGE_DRIVER=postgres, got %q", cfg.StorageDriver)
	}

	db, err := pg.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	return fn(ctx, db)
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}
