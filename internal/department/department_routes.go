package department

import (
	"github.com/LamineOzilJr/memoire-master2/internal/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer) {
	departments := r.Group("/departments")
	departments.Use(middleware.AuthMiddleware())
	{
		departments.GET("", middleware.Authorize(enforcer, "departments", "read"), handler.GetAll)
		departments.GET("/:id", middleware.Authorize(enforcer, "departments", "read"), handler.GetById)
		departments.POST("", middleware.Authorize(enforcer, "departments", "manage"), handler.Create)
		departments.PUT("/:id", middleware.Authorize(enforcer, "departments", "manage"), handler.Update)
		departments.DELETE("/:id", middleware.Authorize(enforcer, "departments", "manage"), handler.Delete)
	}
}
