package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/logger"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/version"
)

func main() {
	_ = godotenv.Load()

	if handleCLICommand(os.Args[1:]) {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)
	log.Info().Str("addr", cfg.AppAddr).Str("version", version.String()).Msg("starting api server")
	if !cfg.ShopifyConfigured() {
		log.Warn().Msg("SHOPIFY_STORE_URL or SHOPIFY_ACCESS_TOKEN missing; customer queries will fail")
	}

	var d deps
	if cfg.RateLimitStore == "redis" {
		rc := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		defer rc.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if !pingRedis(ctx, rc) {
			log.Warn().Str("addr", cfg.RedisAddr).Msg("redis unreachable; rate limits fail open until it recovers")
		}
		cancel()
		d.redis = rc
	}

	srv, err := newServer(cfg, log, d)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to build server")
	}

	go func() {
		if err := srv.echo.Start(cfg.AppAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}
