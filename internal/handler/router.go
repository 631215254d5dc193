package handler

import (
	"gymledger/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, rdb, cfg)

	api := r.Group("/api/v1")
	{
		plan := api.Group("/plan")
		{
			plan.POST("/create", h.CreatePlan)
			plan.GET("/list", h.ListPlans)
		}

		membership := api.Group("/membership")
		{
			membership.POST("/create", h.CreateMembership)
			membership.GET("/detail", h.GetMembership)
			membership.GET("/list", h.ListMemberships)
			membership.POST("/freeze", h.FreezeMembership)
			membership.POST("/resume", h.ResumeMembership)
			membership.POST("/upgrade", h.UpgradeMembership)
		}

		payment := api.Group("/payment")
		{
			payment.POST("/proof", h.UploadProof)
			payment.POST("/review", h.ReviewPayment)
			payment.GET("/detail", h.GetPayment)
			payment.GET("/list", h.ListPayments)
		}

		wallet := api.Group("/wallet")
		{
			wallet.GET("/balance", h.GetWalletBalance)
			wallet.POST("/adjust", h.AdjustWallet)
			wallet.POST("/session", h.UseWalletForSession)
			wallet.GET("/transactions", h.ListWalletTransactions)
		}

		commission := api.Group("/commission")
		{
			commission.POST("/paid", h.MarkCommissionPaid)
			commission.GET("/list", h.ListCommissions)
		}

		api.GET("/audit/list", h.ListAuditTrail)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
