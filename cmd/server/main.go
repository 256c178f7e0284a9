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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	echoapi "go.pilab.hu/authcore/api/echo"
	"go.pilab.hu/authcore/cache"
	redisstore "go.pilab.hu/authcore/cache/redis"
	"go.pilab.hu/authcore/config"
	"go.pilab.hu/authcore/domain"
	"go.pilab.hu/authcore/internal/metrics"
	"go.pilab.hu/authcore/internal/secrets"
	"go.pilab.hu/authcore/internal/telemetry"
	"go.pilab.hu/authcore/keyring"
	"go.pilab.hu/authcore/mongodb"
	"go.pilab.hu/authcore/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogger(cfg)
	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("issuer", cfg.Issuer).
		Str("mongo_db_name", cfg.MongoDBName).
		Msg("starting authcore server")

	metrics.Register(prometheus.DefaultRegisterer)

	tp, err := telemetry.InitTracer("authcore")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	ctx := context.Background()
	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize MongoDB connection")
	}
	db := mongodb.GetDB()

	refreshRepo, err := mongodb.NewRefreshTokenRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize refresh token repository")
	}

	var revocationStore domain.RevocationStore
	if cfg.RedisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		revocationStore = redisstore.NewRevocationStore(redisClient, cfg.RedisPrefix, cfg.RevocationRetention())
		log.Info().Str("redis_addr", cfg.RedisAddr).Msg("using Redis revocation store")
	} else {
		revocationStore = mongodb.NewRevokedJtiRepository(db)
		log.Info().Msg("using MongoDB revocation store")
	}

	ring, err := keyring.Load(keyring.KeyFile{
		Kid:         cfg.CurrentKey.Kid,
		PrivatePath: cfg.CurrentKey.PrivatePath,
		PublicPath:  cfg.CurrentKey.PublicPath,
	}, previousKeyFiles(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load signing keys")
	}

	clock := domain.SystemClock{}
	tokenService := services.NewTokenService(ring, revocationStore, services.TokenConfig{
		Issuer:    cfg.Issuer,
		Audience:  cfg.Audience,
		AccessTTL: cfg.AccessTokenTTL,
		ClockSkew: cfg.ClockSkew,
	}, clock)
	refreshService := services.NewRefreshTokenService(refreshRepo, secrets.NewArgon2idHasher(), cfg.RefreshTokenTTL, clock)
	jwksCache := cache.NewJWKSCache(keyring.NewPublisher(ring), cfg.JWKSCacheTTL)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		if err := mongodb.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	echoapi.NewAuthAPI(tokenService, refreshService, jwksCache, cfg.JWKSCacheTTL).RegisterRoutes(e)

	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	mongodb.CloseMongoDB(shutdownCtx)
	telemetry.Shutdown(shutdownCtx, tp)
}

func setupLogger(cfg *config.ServerConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

func previousKeyFiles(cfg *config.ServerConfig) []keyring.KeyFile {
	files := make([]keyring.KeyFile, 0, len(cfg.PreviousKeys))
	for _, k := range cfg.PreviousKeys {
		files = append(files, keyring.KeyFile{Kid: k.Kid, PublicPath: k.PublicPath})
	}
	return files
}
