package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/invoicer-api/internal/config"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/internal/presentation/http/handler"
	"github.com/sangkips/invoicer-api/internal/presentation/http/middleware"
	"github.com/sangkips/invoicer-api/pkg/logger"
	"github.com/sangkips/invoicer-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	User      *handler.UserHandler
	Company   *handler.CompanyHandler
	Client    *handler.ClientHandler
	Product   *handler.ProductHandler
	Invoice   *handler.InvoiceHandler
	Estimate  *handler.EstimateHandler
	Payment   *handler.PaymentHandler
	Dashboard *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *logger.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.CompanyRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		}
		if deps.RateLimiter != nil {
			body["rate_limiter"] = deps.RateLimiter.Stats()
		}
		c.JSON(200, body)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}
		if deps.IdempotencyRepo != nil {
			protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}))
		}

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/me", h.User.Me)

	companies := protected.Group("/companies")
	{
		companies.GET("", h.Company.List)
		companies.POST("", h.Company.Create)
	}

	company := companies.Group("/:companyId")
	{
		company.GET("", h.Company.Get)
		company.PUT("", h.Company.Update)
		company.GET("/dashboard", h.Dashboard.GetStats)

		registerClientRoutes(company, h)
		registerProductRoutes(company, h)
		registerInvoiceRoutes(company, h)
		registerEstimateRoutes(company, h)
	}
}

func registerClientRoutes(company *gin.RouterGroup, h *Handlers) {
	clients := company.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:clientId", h.Client.Get)
		clients.PUT("/:clientId", h.Client.Update)
		clients.DELETE("/:clientId", h.Client.Delete)
	}
}

func registerProductRoutes(company *gin.RouterGroup, h *Handlers) {
	products := company.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:productId", h.Product.Get)
		products.PUT("/:productId", h.Product.Update)
		products.DELETE("/:productId", h.Product.Delete)
	}
}

func registerInvoiceRoutes(company *gin.RouterGroup, h *Handlers) {
	invoices := company.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", h.Invoice.Create)
		invoices.GET("/:invoiceId", h.Invoice.Get)
		invoices.PUT("/:invoiceId", h.Invoice.Update)
		invoices.DELETE("/:invoiceId", h.Invoice.Delete)
		invoices.POST("/:invoiceId/send", h.Invoice.Send)

		invoices.GET("/:invoiceId/payments", h.Payment.List)
		invoices.POST("/:invoiceId/payments", h.Payment.Record)
		invoices.DELETE("/:invoiceId/payments/:paymentId", h.Payment.Delete)
	}
}

func registerEstimateRoutes(company *gin.RouterGroup, h *Handlers) {
	estimates := company.Group("/estimates")
	{
		estimates.GET("", h.Estimate.List)
		estimates.POST("", h.Estimate.Create)
		estimates.GET("/:estimateId", h.Estimate.Get)
		estimates.PUT("/:estimateId", h.Estimate.Update)
		estimates.DELETE("/:estimateId", h.Estimate.Delete)
		estimates.PUT("/:estimateId/status", h.Estimate.UpdateStatus)
		estimates.POST("/:estimateId/convert", h.Estimate.Convert)
	}
}
