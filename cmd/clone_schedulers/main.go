// Command clone_schedulers books the transactions of every awaiting scheduler.
// Run it from cron, for example once a day.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/SscSPs/mymoney_app/internal/core/services"
	"github.com/SscSPs/mymoney_app/internal/middleware"
	"github.com/SscSPs/mymoney_app/internal/platform/config"
	"github.com/SscSPs/mymoney_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/mymoney_app/pkg/database"
	flag "github.com/spf13/pflag"
)

func main() {
	limit := flag.IntP("limit", "l", 0, "maximum number of schedulers to process (0 means all)")
	migrate := flag.Bool("migrate", false, "apply pending database migrations first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: middleware.ParseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *limit, *migrate); err != nil {
		logger.Error("Scheduler run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, limit int, migrate bool) error {
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(dbPool)

	if migrate {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return err
		}
	}

	svcs := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool))
	report, err := svcs.Scheduler.ProcessAwaiting(ctx, limit)
	fmt.Println(summary(report))
	return err
}

// summary renders the one-line outcome printed at the end of a run.
func summary(r domain.ProcessReport) string {
	if r.Processed == 0 {
		return "nothing to do"
	}
	return fmt.Sprintf("%d scheduler(s) processed (cloned=%d, retired=%d, failed=%d, skipped=%d)",
		r.Processed, r.Cloned, r.Retired, r.Failed, r.Skipped)
}
