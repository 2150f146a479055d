package main

import (
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	server "delai_travel/internal/adapters/http_server"
	"delai_travel/internal/adapters/observability"
	"delai_travel/internal/adapters/openai"
	redisad "delai_travel/internal/adapters/redis"
	"delai_travel/internal/adapters/travelnext"
	"delai_travel/internal/app"
	"delai_travel/internal/domain"
	"delai_travel/internal/shared"
)

func main() {
	_ = godotenv.Load() // best effort; real env wins

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// deps
	catalogOpts := []travelnext.Option{travelnext.WithLogger(log.Logger)}
	if cfg.RedisAddr != "" {
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		catalogOpts = append(catalogOpts, travelnext.WithCache(cache, int(cfg.CacheTTL.Seconds())))
		log.Info().Str("addr", cfg.RedisAddr).Msg("catalog cache enabled")
	}
	catalog := travelnext.New(cfg.HotelAPIURL, cfg.HotelAPIUser, cfg.HotelAPIPass, cfg.SnapshotPath, 5, catalogOpts...)

	var gen domain.TextGenerator
	if cfg.OpenAIKey != "" {
		gen = openai.New(cfg.OpenAIBase, cfg.OpenAIKey, cfg.OpenAIModel, 5)
	}
	orch := app.NewOrchestrator(catalog, gen, cfg.DescWorkers, log.Logger)

	// http
	// the outer HTTP timeout leaves headroom over the per-message budget
	srv := server.New(cfg.ChatTimeout + 15*time.Second)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{O: orch, ChatTimeout: cfg.ChatTimeout})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
