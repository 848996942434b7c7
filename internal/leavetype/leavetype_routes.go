package leavetype

import (
	"github.com/LamineOzilJr/memoire-master2/internal/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer) {
	types := r.Group("/leave-types")
	types.Use(middleware.AuthMiddleware())
	{
		types.GET("", middleware.Authorize(enforcer, "leave-types", "read"), handler.GetAll)
		types.GET("/:id", middleware.Authorize(enforcer, "leave-types", "read"), handler.GetById)
		types.POST("", middleware.Authorize(enforcer, "leave-types", "manage"), handler.Create)
		types.PUT("/:id", middleware.Authorize(enforcer, "leave-types", "manage"), handler.Update)
		types.DELETE("/:id", middleware.Authorize(enforcer, "leave-types", "manage"), handler.Delete)
	}
}
