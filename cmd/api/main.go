package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptoinvest/docs"
	"cryptoinvest/internal/cache"
	"cryptoinvest/internal/config"
	"cryptoinvest/internal/database"
	"cryptoinvest/internal/database/migration"
	handlers "cryptoinvest/internal/http/handler"
	"cryptoinvest/internal/http/middleware"
	"cryptoinvest/internal/logger"
	"cryptoinvest/internal/market"
	"cryptoinvest/internal/metrics"
	"cryptoinvest/internal/otel"
	"cryptoinvest/internal/repository/postgres"
	"cryptoinvest/internal/service"
	"cryptoinvest/internal/storage"
	"cryptoinvest/internal/token"
	"cryptoinvest/internal/worker"
)

// @title						CryptoInvest API
// @version					1.0
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(cfg.Location(), cfg.Level())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required", zap.String("event", "startup_failed"))
	}

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.String("event", "startup_failed"), zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, cfg.Database, log.Named("database"))
	if err != nil {
		log.Fatal("failed to connect to database", zap.String("event", "startup_failed"), zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("failed to migrate database", zap.String("event", "startup_failed"), zap.Error(err))
	}

	// Redis and MinIO are optional: without them quotes are not cached and avatars are disabled.
	var quoteCache cache.Cache
	if rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis unavailable, quote cache disabled", zap.String("event", "cache_disabled"), zap.Error(err))
	} else {
		defer rdb.Close()
		quoteCache = cache.NewRedisCache(rdb, "cryptoinvest:")
	}

	var objStore storage.Storage
	if cfg.MinIO.Endpoint != "" {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO, log.Named("storage"))
		if err != nil {
			log.Fatal("failed to initialize object storage", zap.String("event", "startup_failed"), zap.Error(err))
		}
	} else {
		log.Warn("MINIO_ENDPOINT not set, avatar uploads disabled", zap.String("event", "storage_disabled"))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMw, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("failed to register http metrics", zap.String("event", "startup_failed"), zap.Error(err))
	}
	domainMetrics, err := metrics.New(reg)
	if err != nil {
		log.Fatal("failed to register domain metrics", zap.String("event", "startup_failed"), zap.Error(err))
	}

	sim := market.NewSimulator(market.SimulatorConfig{
		TickInterval: cfg.Market.TickInterval,
		HistorySize:  cfg.Market.HistorySize,
		SeedPoints:   cfg.Market.SeedPoints,
	}, log)
	sim.Start(ctx)
	defer sim.Stop()

	quotes := market.NewExternalQuotes(
		market.NewCoinGecko(cfg.Market.QuoteURL, cfg.Market.RequestTimeout),
		quoteCache, cfg.Market.QuoteTTL, log,
	)

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)

	// Initialize repositories and services
	userRepo := postgres.NewUserPostgres(db)
	balanceRepo := postgres.NewBalancePostgres(db)
	investmentRepo := postgres.NewInvestmentPostgres(db)
	txRepo := postgres.NewTransactionPostgres(db)
	referralRepo := postgres.NewReferralPostgres(db)
	tradeRepo := postgres.NewTradePostgres(db)

	demoBalance := decimal.NewFromFloat(cfg.Trading.DemoBalance)
	authSvc := service.NewAuthService(userRepo, balanceRepo, referralRepo, txRepo, tokens, service.AuthSettings{
		DemoBalance:   demoBalance,
		SignupBonus:   decimal.NewFromFloat(cfg.Referral.SignupBonus),
		ReferrerBonus: decimal.NewFromFloat(cfg.Referral.ReferrerBonus),
	}, domainMetrics, log)
	profileSvc := service.NewProfileService(userRepo, objStore, log)
	walletSvc := service.NewWalletService(balanceRepo, txRepo, sim, log)
	investmentSvc := service.NewInvestmentService(investmentRepo, balanceRepo, txRepo, sim, domainMetrics, log)
	tradingSvc := service.NewTradingService(tradeRepo, balanceRepo, sim, demoBalance, domainMetrics, log)
	referralSvc := service.NewReferralService(userRepo, referralRepo, cfg.PublicURL)
	adminSvc := service.NewAdminService(userRepo, balanceRepo, investmentRepo, txRepo, log)

	if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal("failed to seed administrator", zap.String("event", "startup_failed"), zap.Error(err))
	}

	closer := worker.NewTradeCloser(tradingSvc, cfg.Trading.CloseInterval, log)
	closer.Start(ctx)
	accrual, err := worker.NewAccrual(investmentSvc, cfg.Investment.AccrualSchedule, log)
	if err != nil {
		log.Fatal("failed to schedule accrual", zap.String("event", "startup_failed"), zap.Error(err))
	}
	accrual.Start()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log)
	limiter.StartSweeper(ctx, time.Minute, 10*time.Minute)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(log))
	app.Use(promMw.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:          db,
		Tokens:      tokens,
		Users:       userRepo,
		Limiter:     limiter,
		Gatherer:    reg,
		Auth:        authSvc,
		Profile:     profileSvc,
		Wallet:      walletSvc,
		Investments: investmentSvc,
		Trading:     tradingSvc,
		Referrals:   referralSvc,
		Admin:       adminSvc,
		Market:      sim,
		Quotes:      quotes,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("http server listening", zap.String("event", "server_start"), zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			log.Error("http server stopped", zap.String("event", "server_error"), zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", zap.String("event", "server_shutdown"))

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("http shutdown failed", zap.String("event", "server_shutdown_failed"), zap.Error(err))
	}
	closer.Stop()
	accrual.Stop()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error("tracing shutdown failed", zap.String("event", "tracing_shutdown_failed"), zap.Error(err))
	}
}
