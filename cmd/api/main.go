package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "whatsapp_reviews/internal/adapters/http_server"
	"whatsapp_reviews/internal/adapters/observability"
	redisad "whatsapp_reviews/internal/adapters/redis"
	"whatsapp_reviews/internal/adapters/twilio"
	"whatsapp_reviews/internal/app"
	"whatsapp_reviews/internal/conversation"
	"whatsapp_reviews/internal/domain"
	"whatsapp_reviews/internal/shared"
	"whatsapp_reviews/internal/storage"
)

func main() {
	envFile := flag.String("env", "", "path to .env file (default .env when present)")
	flag.Parse()

	cfg, err := shared.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	store, db, err := storage.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database connection failed")
	}
	defer db.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("schema bootstrap failed")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")

	// optional redis: listing cache + delivery dedup
	var (
		cache    domain.Cache
		convOpts []app.Option
	)
	if cfg.RedisEnabled() {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; continuing, cache and dedup fail open")
		}
		cancel()
		cache = rc
		convOpts = append(convOpts, app.WithDeduper(redisad.NewDeduper(rc.Client()), cfg.DedupTTL))
	} else {
		log.Info().Msg("REDIS_ADDR empty; cache and dedup disabled")
	}

	notifier, err := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioNumber, cfg.TwilioRPS,
		twilio.WithBaseURL(cfg.TwilioBaseURL))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Twilio client")
	}

	// deps
	reg := conversation.NewRegistry()
	q := app.NewQueryService(store, cache, cfg.CacheTTL)
	conv := app.NewConversationService(reg, store, notifier, append(convOpts, app.WithListing(q))...)

	// http
	metricsReg := observability.InitRegistry(reg.Len)
	srv := server.New(cfg.CORSAllowedOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(metricsReg))
	srv.MountHandlers(&server.Handlers{
		Conv:              conv,
		Q:                 q,
		SideEffectTimeout: cfg.SendTimeout,
		ReadTimeout:       15 * time.Second,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	servers := []*http.Server{httpSrv}
	if m := observability.Serve(cfg.MetricsAddr, metricsReg); m != nil {
		servers = append(servers, m)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		s := s
		g.Go(func() error {
			log.Info().Str("addr", s.Addr).Msg("listening")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, s := range servers {
			errs = append(errs, s.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}
