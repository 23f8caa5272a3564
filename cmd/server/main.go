package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appbilling "github.com/quickbill/backend/internal/application/billing"
	appcatalog "github.com/quickbill/backend/internal/application/catalog"
	"github.com/quickbill/backend/internal/infrastructure/auth"
	"github.com/quickbill/backend/internal/infrastructure/config"
	"github.com/quickbill/backend/internal/infrastructure/logger"
	"github.com/quickbill/backend/internal/infrastructure/persistence"
	"github.com/quickbill/backend/internal/interfaces/http/handler"
	"github.com/quickbill/backend/internal/interfaces/http/middleware"
	"github.com/quickbill/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	log.Info("Starting QuickBill backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Token revocation needs Redis; fall back to process-local when absent
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		defer func() { _ = redisBlacklist.Close() }()
		blacklist = redisBlacklist
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	sessions := auth.NewSessionProvider()

	productRepo := persistence.NewGormProductRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	store := appcatalog.NewStore(productRepo, log)
	store.Load(context.Background())

	taxRate := cfg.TaxRateDecimal()
	lifecycle := appbilling.NewLifecycle(invoiceRepo, sessions, taxRate, cfg.Billing.InvoicePrefix, log)
	history := appbilling.NewHistory(invoiceRepo, log)

	authHandler := handler.NewAuthHandler(jwtService, blacklist, sessions, cfg.Operator)
	catalogHandler := handler.NewCatalogHandler(store)
	billingHandler := handler.NewBillingHandler(store, lifecycle, history, taxRate)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths:      []string{"/api/v1/auth/login"},
		Logger:         log,
	}))
	r.Register(authHandler)
	r.Register(catalogHandler)
	r.Register(billingHandler)
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
