// Command generate-invoices runs one billing batch against the database and exits.
// It is meant for cron or manual catch-up runs when the API scheduler is disabled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/sjperalta/clubfin-api/internal/config"
	"github.com/sjperalta/clubfin-api/internal/database"
	"github.com/sjperalta/clubfin-api/internal/jobs"
	"github.com/sjperalta/clubfin-api/internal/repository"
	"github.com/sjperalta/clubfin-api/internal/services"
	"github.com/sjperalta/clubfin-api/pkg/logger"
)

// defaultTimezone matches the API's TIMEZONE default
const defaultTimezone = "UTC"

func main() {
	fs := ff.NewFlagSet("generate-invoices")
	var (
		databaseURL = fs.StringLong("database-url", "", "PostgreSQL connection string (or CLUBFIN_DATABASE_URL)")
		period      = fs.StringLong("period", "", "Billing period (YYYY-MM or YYYY). Defaults to the current one.")
		feeID       = fs.IntLong("fee", 0, "Only bill this fee definition")
		dueDay      = fs.IntLong("due-day", 10, "Day of month invoices fall due")
		timezone    = fs.StringLong("timezone", defaultTimezone, "Club timezone used to decide today")
		environment = fs.StringLong("environment", "development", "Environment name")
		logLevel    = fs.StringLong("log-level", "info", "Log level")
		sweep       = fs.BoolLong("sweep", "Also mark past-due pending invoices as overdue")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("CLUBFIN")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(*environment, *logLevel)

	if *feeID < 0 {
		logger.Error("fee must be a positive id", "fee", *feeID)
		os.Exit(1)
	}
	if *databaseURL == "" {
		logger.Error("database url is required")
		os.Exit(1)
	}
	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		logger.Error("invalid timezone", "timezone", *timezone, "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(*databaseURL, *environment)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	cfg := &config.Config{
		Environment: *environment,
		Billing:     config.BillingConfig{DueDay: *dueDay},
		Location:    loc,
	}
	repos := repository.NewRepositories(db)
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()
	svcs := services.NewServices(repos, repos.Roster, worker, nil, cfg, db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx, svcs, uint(*feeID), *period, *sweep); err != nil {
		logger.Error("billing batch failed", "error", err)
		stop()
		worker.Shutdown()
		os.Exit(1)
	}
}

// run bills one fee, or every recurring fee when feeID is zero. Fees that were billed are
// logged and returned even when others failed.
func run(ctx context.Context, svcs *services.Services, feeID uint, period string, sweep bool) ([]services.GenerationResult, error) {
	var results []services.GenerationResult
	var err error
	if feeID != 0 {
		var result *services.GenerationResult
		if result, err = svcs.Billing.Generate(ctx, feeID, period, time.Time{}, services.SystemActor); err == nil {
			results = append(results, *result)
		}
	} else {
		results, err = svcs.Billing.GenerateRecurring(ctx, period, services.SystemActor)
	}

	for _, r := range results {
		logger.Info("fee billed",
			"fee_id", r.FeeID,
			"fee", r.FeeName,
			"period", r.BillingPeriod,
			"created", r.Created,
			"skipped", r.Skipped,
			"no_guardian", len(r.NoGuardian()))
	}
	if err != nil {
		return results, err
	}

	if sweep {
		marked, err := svcs.Job.Sweep(ctx)
		if err != nil {
			return results, err
		}
		logger.Info("overdue sweep", "marked", marked)
	}
	return results, nil
}
