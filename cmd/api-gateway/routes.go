package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/magazine-flow-api/internal/handler"
	"github.com/noah-isme/magazine-flow-api/internal/middleware"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	"github.com/noah-isme/magazine-flow-api/pkg/config"
)

type handlerSet struct {
	tokens        middleware.TokenValidator
	auth          *handler.AuthHandler
	users         *handler.UserHandler
	tasks         *handler.TaskHandler
	files         *handler.FileHandler
	cxo           *handler.CXOHandler
	catalog       *handler.CatalogHandler
	ads           *handler.AdHandler
	notifications *handler.NotificationHandler
	dashboard     *handler.DashboardHandler
	metrics       *handler.MetricsHandler
}

var (
	sales      = string(models.RoleSales)
	editorial  = string(models.RoleEditorial)
	cxo        = string(models.RoleCXO)
	manager    = string(models.RoleManager)
	superAdmin = string(models.RoleSuperAdmin)
)

func registerRoutes(r *gin.Engine, cfg *config.Config, h *handlerSet) {
	r.GET("/health", h.metrics.Health)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	uploadLimit := middleware.BodyLimit(cfg.Uploads.MaxRequestBytes)
	api.POST("/auth/login", h.auth.Login)
	// Signed links carry their own authorization.
	api.GET("/files/download", middleware.OptionalJWT(h.tokens), h.files.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(h.tokens))

	secured.GET("/auth/me", h.auth.Me)

	users := secured.Group("/users")
	users.GET("", h.users.List)
	users.GET("/team", h.users.Team)
	users.GET("/:id", h.users.Get)

	tasks := secured.Group("/tasks")
	tasks.POST("", h.tasks.Create)
	tasks.GET("", h.tasks.List)
	tasks.GET("/my", h.tasks.Mine)
	tasks.GET("/open", h.tasks.Open)
	tasks.GET("/:id", h.tasks.Get)
	tasks.GET("/:id/history/export", h.tasks.ExportHistory)
	tasks.POST("/:id/pickup", h.tasks.PickUp)
	tasks.POST("/:id/assign", h.tasks.AssignToMember)
	tasks.POST("/:id/assign-team", h.tasks.AssignToTeam)
	tasks.POST("/:id/reassign", h.tasks.Reassign)
	tasks.POST("/:id/complete", h.tasks.Complete)
	tasks.POST("/:id/send-back", h.tasks.SendBackToManager)
	tasks.POST("/:id/handoff", h.tasks.HandOff)
	tasks.POST("/:id/send-to-sales", h.tasks.SendToSales)
	tasks.POST("/:id/archive", middleware.RBAC(manager, middleware.AnyManager), h.tasks.Archive)
	tasks.POST("/:id/files", uploadLimit, h.files.Upload)
	tasks.GET("/:id/files", h.files.List)

	files := secured.Group("/files")
	files.GET("/:fileId/link", h.files.Link)
	files.DELETE("/:fileId", middleware.RBAC(superAdmin), h.files.Delete)

	articles := secured.Group("/cxo")
	articles.POST("/articles", middleware.RBAC(sales, cxo), uploadLimit, h.cxo.Submit)
	articles.GET("/articles", h.cxo.List)
	articles.GET("/articles/:id", h.cxo.Get)
	articles.PUT("/articles/:id", middleware.RBAC(cxo, middleware.AnyManager), h.cxo.Edit)
	articles.POST("/articles/:id/approve", middleware.RBAC(editorial), h.cxo.Approve)
	articles.POST("/articles/:id/reject", middleware.RBAC(editorial), h.cxo.Reject)
	articles.POST("/articles/:id/mark-used", middleware.RBAC(editorial), h.cxo.MarkUsed)
	articles.POST("/articles/:id/archive", middleware.RBAC(superAdmin), h.cxo.ToggleArchive)
	articles.GET("/files/:fileId/link", h.cxo.FileLink)

	catalogAdmin := middleware.RBAC(manager, middleware.AnyManager)
	secured.GET("/brands", h.catalog.ListBrands)
	secured.POST("/brands", catalogAdmin, h.catalog.CreateBrand)
	secured.PUT("/brands/:id", catalogAdmin, h.catalog.UpdateBrand)
	secured.DELETE("/brands/:id", catalogAdmin, h.catalog.DeleteBrand)
	secured.GET("/editions", h.catalog.ListEditions)
	secured.POST("/editions", catalogAdmin, h.catalog.CreateEdition)
	secured.PATCH("/editions/:id/status", catalogAdmin, h.catalog.UpdateEditionStatus)

	ads := secured.Group("/ads")
	ads.POST("", middleware.RBAC(sales, manager, middleware.AnyManager), uploadLimit, h.ads.Upload)
	ads.GET("", h.ads.List)
	ads.PUT("/:id/edition", middleware.RBAC(sales, manager, middleware.AnyManager), h.ads.AssignEdition)
	ads.GET("/:id/link", h.ads.Link)

	notifications := secured.Group("/notifications")
	notifications.GET("", h.notifications.List)
	notifications.GET("/unread-count", h.notifications.UnreadCount)
	notifications.POST("/read-all", h.notifications.MarkAllRead)
	notifications.POST("/:id/read", h.notifications.MarkRead)

	secured.GET("/dashboard", h.dashboard.User)
	secured.GET("/dashboard/manager", middleware.RBAC(manager, middleware.AnyManager), h.dashboard.Manager)

	secured.GET("/metrics/summary", middleware.RBAC(superAdmin), h.metrics.Summary)
}
