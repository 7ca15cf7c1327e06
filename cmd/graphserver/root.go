package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/chat"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/config"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/insights"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/llm"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/metrics"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/server"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/similarity"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/store"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/trace"
)

func newRootCommand() *cobra.Command {
	var configPath string
	var addr string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "graphserver",
		Short: "Backend for uploading and comparing spectroscopy curves",
		Long: `Backend for uploading and comparing spectroscopy curves.

Uploads pair a baseline curve with one or more sample curves. The server
computes interpolation-based error metrics and the discrete Fréchet distance,
normalizes them into unit-free similarity scores, and optionally asks a
generative AI model to interpret the comparison. Results persist to SQLite
and can be exported as a zip of per-sample artifacts.

API keys are read from GEMINI_API_KEY / OPENAI_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if dbPath != "" {
				cfg.DatabasePath = dbPath
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config; empty uses in-memory store)")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var analysisStore store.AnalysisStore
	if cfg.DatabasePath != "" {
		analysisStore, err = store.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open analysis store: %w", err)
		}
	} else {
		analysisStore = store.NewMemoryStore()
	}
	defer analysisStore.Close()

	sessions, err := chat.NewSessionStore(cfg.SessionCapacity)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}

	var collector metrics.Collector = metrics.NewNoopCollector()
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector()
	}

	var exporter trace.Exporter = trace.NewNoopExporter()
	if cfg.TraceFile != "" {
		fe, err := trace.NewFileExporter(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		exporter = fe
	}
	defer exporter.Close()

	engine := similarity.NewEngine(similarity.Options{
		ErrorMetricsCap: cfg.ErrorMetricsCap,
		FrechetCap:      cfg.FrechetCap,
	})

	srv := server.New(server.Options{
		Engine:        engine,
		Analyzer:      insights.NewAnalyzer(engine, client),
		Chat:          chat.NewService(client, sessions),
		Store:         analysisStore,
		Metrics:       collector,
		Exporter:      exporter,
		Logger:        logger,
		LLMConfigured: client != nil,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildLLMClient selects the completion backend from configuration. A
// missing key is not fatal; the service runs with statistical-only insights
// and fallback chat responses, matching how it degrades at runtime.
func buildLLMClient(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm.Client, error) {
	switch cfg.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("OPENAI_API_KEY not set; AI insights disabled")
			return nil, nil
		}
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	default:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY not set; AI insights disabled")
			return nil, nil
		}
		return llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	}
}
