package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"belleza-be/internal/admin"
	"belleza-be/internal/api"
	"belleza-be/internal/auth"
	"belleza-be/internal/category"
	"belleza-be/internal/config"
	"belleza-be/internal/customer"
	"belleza-be/internal/db"
	"belleza-be/internal/events"
	"belleza-be/internal/logger"
	"belleza-be/internal/metrics"
	"belleza-be/internal/middleware"
	"belleza-be/internal/order"
	"belleza-be/internal/otp"
	"belleza-be/internal/product"
	"belleza-be/internal/slug"

	"go.uber.org/zap"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error {
		return srv.ListenAndServe()
	}
)

type app struct {
	handler http.Handler
	limiter *middleware.Limiter
	sweeps  []sweepJob
}

// broker is the event publisher. live is false when no RabbitMQ connection
// backs it and published messages are dropped.
type broker struct {
	publisher events.Publisher
	live      bool
	close     func()
}

// otpSender queues codes only when a live broker will deliver them.
func otpSender(b broker) otp.Sender {
	if b.live {
		return otp.NewQueueSender(b.publisher)
	}
	return otp.LogSender{}
}

// newServer wires repositories, services and the router on top of database.
func newServer(cfg *config.Config, database *sql.DB, b broker) *app {
	customerSvc := customer.NewService(customer.NewRepository(database))

	otpSvc := otp.NewService(otp.NewRepository(database), customerSvc, otpSender(b), otp.Options{
		TTL:         cfg.OTPTTL,
		MaxAttempts: cfg.OTPMaxAttempts,
		ExposeCode:  cfg.OTPExposeCode,
	})

	productRepo := product.NewRepository(database)
	categoryRepo := category.NewRepository(database)
	adminSvc := admin.NewService(admin.NewRepository(database), cfg.AdminSessionTTL)

	limiter := middleware.NewLimiter(cfg.InternalSecretKey)

	h := api.NewHandler(api.Deps{
		OTP:        otpSvc,
		Customers:  customerSvc,
		Orders:     order.NewService(order.NewRepository(database), b.publisher),
		Products:   product.NewService(productRepo),
		Categories: category.NewService(categoryRepo),
		Admins:     adminSvc,
		Tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.CustomerTokenTTL),
		Slugs: map[string]*slug.Allocator{
			api.SlugKindProduct:  slug.NewAllocator(productRepo),
			api.SlugKindCategory: slug.NewAllocator(categoryRepo),
		},
		Metrics:       metrics.NewRegistry(),
		SecureCookies: cfg.IsProduction(),
	})

	return &app{
		handler: api.NewRouter(h, api.RouterOptions{
			CORSOrigin: cfg.CORSOrigin,
			Limiter:    limiter,
		}),
		limiter: limiter,
		sweeps: []sweepJob{
			{name: "otp_codes", run: otpSvc.PurgeExpired},
			{name: "admin_sessions", run: adminSvc.PurgeExpiredSessions},
		},
	}
}

// newBroker connects to RabbitMQ when configured. Without a broker, or when
// the broker is unreachable, events are dropped and OTP codes go to the log.
func newBroker(cfg *config.Config) broker {
	offline := broker{publisher: events.NoopPublisher{}, close: func() {}}
	if cfg.RabbitMQURL == "" {
		logger.L().Info("RABBITMQ_URL not set, events disabled")
		return offline
	}

	pool, err := events.NewChannelPool(cfg.RabbitMQURL, cfg.RabbitMQPoolSize, events.Queues)
	if err != nil {
		logger.L().Warn("RabbitMQ unavailable, events disabled", zap.Error(err))
		return offline
	}
	return broker{publisher: events.NewAMQPPublisher(pool), live: true, close: pool.Close}
}

type sweepJob struct {
	name string
	run  func(ctx context.Context) (int64, error)
}

// sweep runs every job once per interval until ctx is done.
func sweep(ctx context.Context, interval time.Duration, jobs []sweepJob) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, job := range jobs {
				n, err := job.run(ctx)
				if err != nil {
					logger.L().Warn("sweep failed", zap.String("job", job.name), zap.Error(err))
					continue
				}
				if n > 0 {
					logger.L().Info("swept expired rows", zap.String("job", job.name), zap.Int64("count", n))
				}
			}
		}
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	b := newBroker(cfg)
	defer b.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newServer(cfg, database, b)
	go a.limiter.Run(ctx)
	go sweep(ctx, sweepInterval, a.sweeps)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server listening", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
