package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	echoapi "github.com/fxgate/fxgate/api/echo"
	"github.com/fxgate/fxgate/cache"
	redicache "github.com/fxgate/fxgate/cache/redis"
	"github.com/fxgate/fxgate/config"
	"github.com/fxgate/fxgate/events"
	"github.com/fxgate/fxgate/internal/auth"
	"github.com/fxgate/fxgate/internal/currencyapi"
	"github.com/fxgate/fxgate/internal/federation"
	"github.com/fxgate/fxgate/internal/token"
	"github.com/fxgate/fxgate/mongodb"
	"github.com/fxgate/fxgate/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	users, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build user repository")
	}
	ledger := mongodb.NewTokenLedger(db)

	codec, err := token.NewCodec(token.Options{
		Issuer:     cfg.JWTIssuer,
		SecretKey:  cfg.JWTSecretKey,
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  cfg.AccessTokenTTL(),
		RefreshTTL: cfg.RefreshTokenTTL(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token codec")
	}

	hasher := auth.NewBcryptPasswordHasher(0)
	authService := services.NewAuthService(users, ledger, codec, hasher,
		federation.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI),
		federation.NewYandexProvider(cfg.YandexClientID, cfg.YandexClientSecret, cfg.YandexRedirectURI),
	)
	userService := services.NewUserService(users, hasher)

	local := cache.NewMemoryRateCache(cache.CatalogTTL)
	defer local.Close()
	rateCache := cache.NewLayered(local, redicache.NewRateCache(redisClient))

	provider := currencyapi.New(cfg.CurrencyAPIURL, cfg.CurrencyAPIKey, cfg.CurrencyAPITimeout())
	publisher := events.NewStreamPublisher(redisClient, cfg.NoticeStream)
	currencyService := services.NewCurrencyService(provider, rateCache, publisher)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	echoapi.NewAPI(authService, userService, currencyService).RegisterRoutes(e)

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting http server")
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}
