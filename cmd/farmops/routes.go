package main

import (
	"net/http"

	"github.com/croftlabs/farmops/internal/auth"
	"github.com/croftlabs/farmops/internal/config"
	"github.com/croftlabs/farmops/internal/inventory/handler"
	"github.com/croftlabs/farmops/internal/middleware"
	"github.com/gin-gonic/gin"
)

func registerRoutes(r *gin.Engine, h *handler.Handlers, authH *auth.Handler, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", authH.Login)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", authH.Me)

			users := authorized.Group("/users")
			users.Use(middleware.RequireRole("admin"))
			{
				users.POST("", authH.CreateUser)
			}

			items := authorized.Group("/items")
			{
				items.GET("", h.Item.List)
				items.GET("/export", h.Item.Export)
				items.GET("/:id", h.Item.Get)
				items.POST("", middleware.RequireRole("admin"), h.Item.Create)
				items.PUT("/:id", middleware.RequireRole("admin"), h.Item.Update)
				items.PUT("/:id/status", middleware.RequireRole("admin"), h.Item.SetStatus)
			}

			ledger := authorized.Group("/ledger")
			{
				ledger.GET("/movements", h.Ledger.List)
				ledger.GET("/export", h.Ledger.Export)
				ledger.POST("/movements", middleware.RequireRole("admin"), h.Ledger.ApplyDelta)
				ledger.GET("/reconcile/:itemId", middleware.RequireRole("admin"), h.Ledger.Reconcile)
			}

			requests := authorized.Group("/requests")
			{
				requests.GET("", h.Request.List)
				requests.GET("/:id", h.Request.Get)
				requests.POST("", h.Request.Create)
				requests.PUT("/:id/approve", middleware.RequireRole("admin"), h.Request.Approve)
				requests.PUT("/:id/reject", middleware.RequireRole("admin"), h.Request.Reject)
				requests.PUT("/:id/fulfill", middleware.RequireRole("admin"), h.Request.Fulfill)
			}

			batches := authorized.Group("/batches")
			{
				batches.GET("", h.Batch.List)
				batches.GET("/expiring", h.Batch.Expiring)
				batches.GET("/:id", h.Batch.Get)
				batches.GET("/:id/history", h.Batch.History)
				batches.POST("", middleware.RequireRole("admin"), h.Batch.Receive)
				batches.PUT("/:id/status", middleware.RequireRole("admin"), h.Batch.SetStatus)
				batches.POST("/:id/attachments", middleware.RequireRole("admin"), h.Batch.UploadAttachment)
			}

			suppliers := authorized.Group("/suppliers")
			{
				suppliers.GET("", h.Supplier.List)
				suppliers.GET("/:id", h.Supplier.Get)
				suppliers.POST("", middleware.RequireRole("admin"), h.Supplier.Create)
				suppliers.PUT("/:id", middleware.RequireRole("admin"), h.Supplier.Update)
			}

			authorized.GET("/dashboard/summary", h.Dashboard.Summary)
		}
	}
}
