package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/formwire/formwire/internal/config"
	"github.com/formwire/formwire/internal/logging"
	"github.com/formwire/formwire/internal/observability"
	"github.com/formwire/formwire/internal/session"
)

func main() {
	logging.ConfigureRuntime()
	configPath := flag.String("config", "cmd/formd/config.toml", "path to server config")
	flag.Parse()

	cfg, err := config.LoadServerConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load server config")
	}
	log.Info().Str("path", *configPath).Msg("loaded server config")

	codec, err := config.BuildCodec(cfg.Codec)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build codec")
	}

	srv, err := session.NewServer(coreContext(), codec, session.ServerConfig{
		Session:      config.ServerSession(cfg),
		RequestRate:  cfg.RequestRate,
		RequestBurst: cfg.RequestBurst,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}
	go handleSignals(srv)

	log.Info().Str("name", cfg.Name).Str("addr", cfg.Addr).Str("codec", cfg.Codec).Msg("formd starting")
	if err := srv.ListenAndServe(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func serveMetrics(addr string) {
	observability.RegisterMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("addr", addr).Msg("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics listener stopped")
	}
}

func handleSignals(srv *session.Server) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	log.Info().Msg("shutting down")
	if err := srv.Shutdown(5 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
	os.Exit(0)
}
