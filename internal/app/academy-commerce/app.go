package academycommerce

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/academy-commerce/internal/cache"
	"github.com/magabrotheeeer/academy-commerce/internal/config"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/jwt"
	"github.com/magabrotheeeer/academy-commerce/internal/migrations"
	"github.com/magabrotheeeer/academy-commerce/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/academy-commerce/internal/services/auth"
	couponservice "github.com/magabrotheeeer/academy-commerce/internal/services/coupon"
	cubeservice "github.com/magabrotheeeer/academy-commerce/internal/services/cubes"
	examservice "github.com/magabrotheeeer/academy-commerce/internal/services/exam"
	moduleservice "github.com/magabrotheeeer/academy-commerce/internal/services/module"
	paymentservice "github.com/magabrotheeeer/academy-commerce/internal/services/payment"
	subservice "github.com/magabrotheeeer/academy-commerce/internal/services/subscription"
	"github.com/magabrotheeeer/academy-commerce/internal/storage/repository"

	"github.com/streadway/amqp"
)

// App собирает HTTP-сервер движка покупок и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New собирает приложение: хранилище, миграции, кеш, очередь квитанций,
// сервисы бизнес-логики и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetReceiptQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	cubeService := cubeservice.NewCubeService(db, logger)
	subscriptionService := subservice.NewSubscriptionService(db, cubeService, cacheRedis, cfg.StaffEmailDomain, logger)
	examService := examservice.NewExamService(db, cacheRedis, logger)
	couponService := couponservice.NewCouponService(db, cubeService, subscriptionService, examService, publisher, logger)
	paymentService := paymentservice.NewPaymentService(db, cubeService, subscriptionService, examService, publisher, cfg.Settlement.Delay, logger)
	moduleService := moduleservice.NewModuleService(db, cubeService, subscriptionService, logger)
	authService := authservice.NewAuthService(db, cubeService, subscriptionService, jwtMaker, cfg.StaffEmailDomain, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:          authService,
		Cubes:         cubeService,
		Subscriptions: subscriptionService,
		Exams:         examService,
		Coupons:       couponService,
		Payments:      paymentService,
		Modules:       moduleService,
	}, jwtMaker)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		if closeErr := a.amqp.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.Any("err", closeErr))
		}
		return err
	}
}
