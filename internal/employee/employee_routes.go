package employee

import (
	"github.com/LamineOzilJr/memoire-master2/internal/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", middleware.Authorize(enforcer, "employees", "read"), handler.GetAll)
		employees.GET("/options", middleware.Authorize(enforcer, "employees", "read"), handler.GetOptions)
		employees.GET("/:id", middleware.Authorize(enforcer, "employees", "read"), handler.GetById)
		employees.POST("", middleware.Authorize(enforcer, "employees", "manage"), handler.Create)
		employees.PUT("/:id", middleware.Authorize(enforcer, "employees", "manage"), handler.Update)
		employees.DELETE("/:id", middleware.Authorize(enforcer, "employees", "manage"), handler.Delete)
	}
}
