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

	"hcp-crm/internal/apiclient"
	"hcp-crm/internal/autofill"
	"hcp-crm/internal/config"
	"hcp-crm/internal/formstate"
	"hcp-crm/internal/listing"
	"hcp-crm/internal/logging"
	"hcp-crm/internal/metrics"
	"hcp-crm/internal/scheduler"
	"hcp-crm/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.NewWeb()
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

func run(ctx context.Context, cfg *config.Web, logger *zap.Logger) error {
	reg := metrics.New("web")

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	client := apiclient.New(cfg.APIBaseURL, nil, logger.Named("apiclient"))
	sessions := formstate.NewManager()
	flow := autofill.New(client,
		autofill.WithTimeout(cfg.ChatTimeout),
		autofill.WithLogger(logger.Named("autofill")),
		autofill.WithTurnCounter(reg.Counter("hcp_chat_turns_total", "Chat turns by result", "result")),
	)
	loader := listing.NewLoader(client, loc, logger.Named("listing"))

	srv, err := web.NewServer(sessions, flow, loader, reg, logger, &web.Config{Host: cfg.Host, Port: cfg.Port})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	sched := scheduler.New(logger.Named("scheduler"))
	if err := sched.AddJob(cfg.SweepCron, "session-sweep", srv.SweepJob(cfg.SessionTTL)); err != nil {
		logger.Warn("session sweep disabled", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if _, err := client.Health(ctx); err != nil {
		logger.Warn("backend not reachable yet", zap.String("api_base_url", cfg.APIBaseURL), zap.Error(err))
	}

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
