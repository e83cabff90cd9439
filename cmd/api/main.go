package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/config"
	"github.com/sangkips/invoicer-api/internal/infrastructure/cache"
	"github.com/sangkips/invoicer-api/internal/infrastructure/database"
	"github.com/sangkips/invoicer-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicer-api/internal/presentation/http/handler"
	"github.com/sangkips/invoicer-api/internal/presentation/http/middleware"
	"github.com/sangkips/invoicer-api/internal/presentation/http/routes"
	"github.com/sangkips/invoicer-api/pkg/email"
	"github.com/sangkips/invoicer-api/pkg/logger"
	"github.com/sangkips/invoicer-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		log = logger.Default()
		log.Warnw("Falling back to default logger", "error", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}

	if err := database.AutoMigrate(db, log); err != nil {
		log.Fatalw("Failed to run migrations", "error", err)
	}

	// The dashboard cache is optional; without Redis every read is computed.
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warnw("Redis unavailable, dashboard cache disabled", "error", err)
	} else {
		defer redisClient.Close()
	}
	dashboardCache := cache.NewRedisStore(redisClient, cfg.Redis.KeyPrefix)

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiryHours)

	// Initialize repositories
	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	estimateRepo := repository.NewEstimateRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromAddress,
	})
	if !emailService.Enabled() {
		log.Infow("SMTP not configured, invoice notices are skipped")
	}

	// Billing core
	scope := service.NewTenantScope(userRepo, companyRepo, clientRepo, productRepo, invoiceRepo, estimateRepo, paymentRepo)
	numbers := service.NewDocumentNumberAllocator(companyRepo)
	items := service.NewLineItemSetReconciler(productRepo, invoiceRepo, estimateRepo)
	ledger := service.NewPaymentLedger(invoiceRepo, paymentRepo, productRepo)

	// Initialize services
	dashboardService := service.NewDashboardService(scope, analyticsRepo, dashboardCache)
	userService := service.NewUserService(scope, userRepo)
	companyService := service.NewCompanyService(txManager, scope, companyRepo)
	clientService := service.NewClientService(txManager, scope, clientRepo)
	productService := service.NewProductService(txManager, scope, productRepo)
	invoiceService := service.NewInvoiceService(txManager, scope, numbers, items, ledger, invoiceRepo, emailService, dashboardService)
	estimateService := service.NewEstimateService(txManager, scope, numbers, items, ledger, estimateRepo, invoiceRepo, dashboardService)
	paymentService := service.NewPaymentService(txManager, scope, ledger, dashboardService)

	seedUser(ctx, cfg, log, userService, jwtManager)

	handlers := &routes.Handlers{
		User:      handler.NewUserHandler(userService),
		Company:   handler.NewCompanyHandler(companyService),
		Client:    handler.NewClientHandler(clientService),
		Product:   handler.NewProductHandler(productService),
		Invoice:   handler.NewInvoiceHandler(invoiceService),
		Estimate:  handler.NewEstimateHandler(estimateService),
		Payment:   handler.NewPaymentHandler(paymentService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          log,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     middleware.NewCompanyRateLimiter(ctx, middleware.RateLimiterConfigFrom(&cfg.RateLimit)),
	})

	go sweepIdempotencyKeys(ctx, log, idempotencyRepo)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "name", cfg.App.Name, "port", port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server exited")
}

// seedUser provisions the configured development user. Outside production a
// token for it is logged so the API can be called without an identity provider.
func seedUser(ctx context.Context, cfg *config.Config, log *logger.Logger, users *service.UserService, jwtManager *utils.JWTManager) {
	if cfg.Seed.AdminEmail == "" {
		log.Debug("No seed user configured")
		return
	}

	name := cfg.Seed.AdminName
	if name == "" {
		name = "Admin"
	}

	user, err := users.EnsureUser(ctx, cfg.Seed.AdminEmail, name)
	if err != nil {
		log.Warnw("Failed to seed user", "email", cfg.Seed.AdminEmail, "error", err)
		return
	}
	if cfg.App.Env == "production" {
		return
	}

	token, err := jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		log.Warnw("Failed to issue seed user token", "error", err)
		return
	}
	log.Infow("Seed user ready", "user_id", user.ID, "email", user.Email, "token", token)
}

func sweepIdempotencyKeys(ctx context.Context, log *logger.Logger, repo interface {
	DeleteExpired(ctx context.Context) (int64, error)
}) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Warnw("Failed to delete expired idempotency keys", "error", err)
				continue
			}
			if n > 0 {
				log.Debugw("Deleted expired idempotency keys", "count", n)
			}
		}
	}
}
