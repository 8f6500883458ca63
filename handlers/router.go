package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nklabsmm/officeassets_backend/middlewares"
)

// RegisterRoutes wires the REST surface. Read endpoints are open to any
// authenticated user; anything that moves stock or money is admin-only.
func RegisterRoutes(r *gin.Engine) {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	assets := api.Group("/assets")
	{
		assets.GET("", ListAssets)
		assets.GET("/:id", GetAsset)
		assets.GET("/:id/ids", GetAssetIds)
		assets.GET("/:id/available", GetAvailableAssetIds)
		assets.POST("", middlewares.AdminOnly(), CreateAsset)
		assets.PUT("/:id", middlewares.AdminOnly(), UpdateAsset)
		assets.DELETE("/:id", middlewares.AdminOnly(), DeleteAsset)
	}

	purchases := api.Group("/purchases", middlewares.AdminOnly())
	{
		purchases.GET("", ListPurchases)
		purchases.GET("/:id", GetPurchase)
		purchases.GET("/:id/ids", GetPurchaseAssetIds)
		purchases.POST("", CreatePurchase)
		purchases.PUT("/:id", UpdatePurchase)
		purchases.DELETE("/:id", DeletePurchase)
	}

	requests := api.Group("/requests")
	{
		requests.GET("", ListAssetRequests)
		requests.GET("/pending", middlewares.AdminOnly(), ListPendingAssetRequests)
		requests.GET("/:id", GetAssetRequest)
		requests.POST("", CreateAssetRequest)
		requests.POST("/:id/approve", middlewares.AdminOnly(), ApproveAssetRequest)
		requests.POST("/:id/reject", middlewares.AdminOnly(), RejectAssetRequest)
		requests.POST("/walk-up", middlewares.AdminOnly(), CreateAndApproveAssetRequest)
	}

	api.GET("/users/:email/assets", GetUserAssetDetails)

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/stats", GetDashboardStats)
		dashboard.GET("/inventory", GetInventorySummary)
		dashboard.GET("/inventory/export", middlewares.AdminOnly(), ExportInventorySummary)
	}

	admin := api.Group("/admin", middlewares.AdminOnly())
	{
		admin.POST("/reconciliation/run", RunReconciliation)
		admin.GET("/reconciliation/findings", ListOpenReconciliationFindings)
		admin.POST("/assets/:id/rebuild", RebuildAssetLedger)
	}
}
