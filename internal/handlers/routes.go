package handlers

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/clubfin-api/internal/config"
	"github.com/sjperalta/clubfin-api/internal/middleware"
	"github.com/sjperalta/clubfin-api/internal/models"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the gin engine with global middleware and every API route
func NewRouter(h *Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	v1.GET("/health", h.Health.Index)

	// Tokens are issued by the club's identity provider
	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.JWTSecret))
	{
		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			// Fee catalog and invoice generation
			admin.GET("/fees", h.Fee.Index)
			admin.POST("/fees", h.Fee.Create)
			admin.POST("/fees/generate_recurring", h.Fee.GenerateRecurring)
			admin.GET("/fees/:fee_id", h.Fee.Show)
			admin.PUT("/fees/:fee_id", h.Fee.Update)
			admin.DELETE("/fees/:fee_id", h.Fee.Delete)
			admin.POST("/fees/:fee_id/generate", h.Fee.Generate)
			admin.POST("/fees/:fee_id/assign", h.Invoice.Assign)

			// Invoice ledger
			admin.GET("/invoices", h.Invoice.Index)
			admin.POST("/invoices/sweep_overdue", h.Job.Sweep)
			admin.GET("/invoices/:invoice_id", h.Invoice.Show)

			// Payment review
			admin.GET("/payments", h.Payment.Index)
			admin.POST("/payments/bulk", h.Payment.SubmitBulk)
			admin.GET("/payments/:payment_id", h.Payment.Show)
			admin.POST("/payments/:payment_id/approve", h.Payment.Approve)
			admin.POST("/payments/:payment_id/reject", h.Payment.Reject)

			finance := admin.Group("/finance")
			{
				finance.GET("/summary", h.Finance.Summary)
				finance.GET("/monthly", h.Finance.CashFlow)
				finance.GET("/income_by_category", h.Finance.IncomeByCategory)
				finance.GET("/recent_payments", h.Finance.RecentPayments)
				finance.GET("/transactions", h.Finance.Transactions)
				finance.POST("/transactions", h.Finance.CreateTransaction)
				finance.GET("/export", h.Finance.Export)
			}

			admin.GET("/guardians/:guardian_id/statement", h.Statement.Show)
			admin.GET("/audits", h.Audit.Index)
			admin.GET("/jobs/status", h.Job.Status)
			admin.POST("/jobs/generate", h.Job.Generate)
		}

		// Guardian self-service; handlers scope every query to the caller
		me := protected.Group("/me")
		me.Use(middleware.RequireRole(models.RoleGuardian))
		{
			me.GET("/invoices", h.Invoice.Index)
			me.GET("/invoices/:invoice_id", h.Invoice.Show)
			me.POST("/invoices/:invoice_id/payments", h.Payment.Submit)
			me.GET("/payments", h.Payment.Index)
			me.GET("/statement", h.Statement.Mine)
		}

		// Owner or admin
		protected.GET("/payments/:payment_id/proof", h.Payment.DownloadProof)
	}

	return router
}
