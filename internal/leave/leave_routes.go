package leave

import (
	"github.com/SeptianSamdani/leave-management-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		leaves.GET("", middleware.RoleMiddleware("employee", "admin"), handler.GetAll)
		leaves.GET("/statistics", middleware.RoleMiddleware("employee", "admin"), handler.Statistics)
		leaves.GET("/:id", middleware.RoleMiddleware("employee", "admin"), handler.GetById)
		leaves.POST("", middleware.RoleMiddleware("employee", "admin"), middleware.Idempotency(rdb), handler.Create)
		leaves.DELETE("/:id", middleware.RoleMiddleware("employee", "admin"), handler.Cancel)
	}

	admin := r.Group("/admin/leaves")
	admin.Use(middleware.AuthMiddleware(), middleware.ExtractUserID(), middleware.RoleMiddleware("admin"))
	{
		admin.GET("", handler.AdminGetAll)
		admin.GET("/dashboard", handler.Dashboard)
		admin.GET("/:id", handler.AdminGetById)
		admin.PATCH("/:id/approve", handler.Approve)
		admin.PATCH("/:id/reject", handler.Reject)
	}
}
