package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/valuatum/myyntikunto/internal/api"
	"github.com/valuatum/myyntikunto/internal/assessment"
	"github.com/valuatum/myyntikunto/internal/config"
	"github.com/valuatum/myyntikunto/internal/database"
	"github.com/valuatum/myyntikunto/internal/export"
	"github.com/valuatum/myyntikunto/internal/llm"
	"github.com/valuatum/myyntikunto/internal/market"
	"github.com/valuatum/myyntikunto/internal/questions"
	"github.com/valuatum/myyntikunto/internal/report"
	"github.com/valuatum/myyntikunto/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API, migrations and background workers",
		Action: func(c *cli.Context) error {
			return serve(c.Context, config.Load())
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Gemini backs question phrasing and multiplier lookup when configured.
	var generator questions.Generator = questions.RuleGenerator{}
	var multipliers market.Source = market.StaticSource{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("creating gemini client: %w", err)
		}
		generator = questions.Fallback{Primary: questions.NewLLMGenerator(gemini), Secondary: questions.RuleGenerator{}}
		multipliers = market.NewCachedSource(market.NewLLMSource(gemini), market.StaticSource{}, cfg.MultiplierCacheTTL)
	} else {
		slog.Warn("GEMINI_API_KEY not set, using rule-based questions and static multipliers")
	}

	var hooks []report.AfterSaveHook
	if cfg.SheetsSpreadsheetID != "" && cfg.SheetsCredentialsJSON != "" {
		sheetsWriter, err := export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsCredentialsJSON)
		if err != nil {
			return fmt.Errorf("creating sheets writer: %w", err)
		}
		hooks = append(hooks, sheetsWriter)
	}

	reportSvc := report.NewService(eng, report.NewPgRepository(pool), cfg.ShareLinkTTL, hooks...)
	assessmentSvc := assessment.NewService(eng, generator, reportSvc, cfg.AssessmentTTL)

	shareWorker := worker.NewShareWorker(reportSvc, cfg.ShareWorkerInterval)
	go shareWorker.Run(ctx)

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, report endpoints are unprotected")
	}

	handler := api.NewHandler(eng, reportSvc, assessmentSvc, multipliers, cfg.ReportListLimit)
	srv := api.NewServer(cfg.HTTPPort, handler, cfg.AdminAPIKey)

	go func() {
		slog.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
