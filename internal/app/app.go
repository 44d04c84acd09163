package app

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/gamestore/internal/config"
	"github.com/fsdevblog/gamestore/internal/repository/pgrepo"
	"github.com/fsdevblog/gamestore/internal/repository/rediscache"
	"github.com/fsdevblog/gamestore/internal/service"
	"github.com/fsdevblog/gamestore/internal/transport/api"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

const redisConnectTimeout = 3 * time.Second

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.WithFields(logrus.Fields{
		"address":    a.Config.RunAddress,
		"migrations": a.Config.MigrationsDir,
		"redis":      a.Config.RedisAddr,
	}).Info("starting app")

	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return errors.Wrap(connErr, "app run")
	}
	defer conn.Close()

	unitOfWork, uowErr := pgrepo.NewUnitOfWork(conn)
	if uowErr != nil {
		return errors.Wrap(uowErr, "app run")
	}

	rankingCache, redisClient := a.initRankingCache(notifyCtx)
	if redisClient != nil {
		defer func() {
			_ = redisClient.Close()
		}()
	}

	services, sErr := service.Factory(unitOfWork, service.FactoryArgs{
		JWTSecret:    []byte(a.Config.JWTUserSecret),
		RankingCache: rankingCache,
		Logger:       a.Logger,
	})
	if sErr != nil {
		return errors.Wrap(sErr, "app run")
	}

	router, rErr := api.New(api.RouterArgs{
		Logger:          a.Logger,
		UserService:     services.UserService,
		CatalogService:  services.CatalogService,
		CartService:     services.CartService,
		CheckoutService: services.CheckoutService,
		DiscountService: services.DiscountService,
		WalletService:   services.WalletService,
		RankingService:  services.RankingService,
		JWTSecretKey:    []byte(a.Config.JWTUserSecret),
		RateLimitRPS:    a.Config.RateLimitRPS,
		RateLimitBurst:  a.Config.RateLimitBurst,
	})
	if rErr != nil {
		return errors.Wrap(rErr, "app run")
	}

	srv := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
	}

	errChan := make(chan error, 1)
	go func() {
		if runErr := srv.ListenAndServe(); runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		a.Logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "http server shutdown")
		}
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return errors.Wrap(err, "http server")
	}
}

// initRankingCache подключает redis для кэша рейтинга. Недоступный redis не мешает запуску,
// рейтинг в этом случае читается напрямую из postgres.
func (a *App) initRankingCache(ctx context.Context) (service.RankingCache, *redis.Client) {
	if a.Config.RedisAddr == "" {
		a.Logger.Info("redis address is not set, ranking cache disabled")
		return nil, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	client, err := rediscache.Connect(connectCtx, rediscache.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	})
	if err != nil {
		a.Logger.WithError(err).Warn("redis unavailable, ranking cache disabled")
		return nil, nil
	}
	return rediscache.NewRankingCache(client, a.Config.RankingCacheTTL), client
}
