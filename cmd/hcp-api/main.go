package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hcp-crm/internal/agent"
	"hcp-crm/internal/api"
	"hcp-crm/internal/config"
	"hcp-crm/internal/llm"
	"hcp-crm/internal/logging"
	"hcp-crm/internal/metrics"
	"hcp-crm/internal/repository"
	"hcp-crm/internal/scheduler"
	"hcp-crm/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.NewAPI()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Level, cfg.Format)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down gracefully", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server shutdown complete")
}

func run(ctx context.Context, cfg *config.API, logger *zap.Logger) error {
	reg := metrics.New("api")

	repo, err := repository.Open(string(cfg.StoreDriver), cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open interaction store: %w", err)
	}
	defer repo.Close()

	provider := string(cfg.LLMProvider)
	client, err := llm.NewFactory(cfg).CreateClient(provider, cfg.OpenAIModel)
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}
	client = llm.Guard(client,
		llm.WithRateLimit(cfg.LLMRateLimit, cfg.LLMBurst),
		llm.WithRequestCounter(provider, reg.Counter("hcp_llm_requests_total", "LLM requests by provider and result", "provider", "result")),
	)

	ag := agent.New(client, repo,
		agent.WithSystemPrompt(readSystemPrompt(cfg.SystemPromptPath, logger)),
		agent.WithLogger(logger.Named("agent")),
		agent.WithRunCounter(reg.Counter("hcp_agent_runs_total", "Agent runs by result", "result")),
		agent.WithSaveCounter(reg.Counter("hcp_interactions_saved_total", "Interaction saves by result", "result")),
	)

	var rec storage.Recorder
	if cfg.ChatLogPath != "" {
		fr, err := storage.NewFileRecorder(cfg.ChatLogPath)
		if err != nil {
			logger.Warn("failed to init chat log", zap.String("path", cfg.ChatLogPath), zap.Error(err))
		} else {
			defer fr.Close()
			rec = fr
		}
	}

	srv, err := api.NewServer(ag, repo, rec, reg, logger, &api.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	sched := scheduler.New(logger.Named("scheduler"))
	if err := sched.AddJob(cfg.DigestCron, "daily-digest", srv.DailyDigest); err != nil {
		logger.Warn("daily digest disabled", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	logger.Info("hcp api configured",
		zap.String("llm_provider", provider),
		zap.String("model", cfg.OpenAIModel),
		zap.String("store", string(cfg.StoreDriver)),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func readSystemPrompt(path string, logger *zap.Logger) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("system prompt file not found or unreadable", zap.String("path", path), zap.Error(err))
		return ""
	}
	return string(data)
}
