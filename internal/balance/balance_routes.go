package balance

import (
	"github.com/LamineOzilJr/memoire-master2/internal/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer) {
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("/employee/:employeeId", middleware.Authorize(enforcer, "balances", "read"), handler.GetByEmployee)
		balances.POST("/initialize", middleware.Authorize(enforcer, "balances", "manage"), handler.InitializeAnnual)
	}
}
