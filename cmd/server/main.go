package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/tuanvu2703/Nemo-social-network/internal/adapters/http"
	signaladapter "github.com/tuanvu2703/Nemo-social-network/internal/adapters/signal"
	"github.com/tuanvu2703/Nemo-social-network/internal/app"
	"github.com/tuanvu2703/Nemo-social-network/internal/app/calls"
	"github.com/tuanvu2703/Nemo-social-network/internal/app/orch"
	"github.com/tuanvu2703/Nemo-social-network/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	o := &orch.Orchestrator{
		Registry:     app.NewRegistry(),
		Calls:        calls.NewTable(),
		Policy:       app.SimplePolicy{},
		RingTimeout:  cfg.RingTimeout,
		ReapInterval: cfg.ReapInterval,
	}

	limiter := signaladapter.NewCallRateLimiter(cfg.CallRateLimit, cfg.CallRateInterval)
	ctl := signaladapter.NewSignalWSController(o, limiter, cfg.SendBuffer)
	o.Deliver = ctl.Deliver

	go o.Run(ctx)

	r := router.SetupRouter(ctx, cfg, o, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	o.Shutdown()
	log.Info().Msg("Server exited gracefully")
}
