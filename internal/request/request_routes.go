package request

import (
	"github.com/LamineOzilJr/memoire-master2/internal/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer, rdb ...*redis.Client) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		if redisClient != nil {
			requests.POST("",
				middleware.Authorize(enforcer, "requests", "create"),
				middleware.Idempotency(redisClient),
				handler.Submit,
			)
		} else {
			requests.POST("", middleware.Authorize(enforcer, "requests", "create"), handler.Submit)
		}
		requests.GET("/queue", middleware.Authorize(enforcer, "requests", "read"), handler.GetQueue)
		requests.GET("/mine", middleware.Authorize(enforcer, "requests", "read"), handler.GetMine)
		requests.GET("/absences", middleware.Authorize(enforcer, "requests", "read"), handler.GetAbsences)
		requests.GET("/employee/:employeeId", middleware.Authorize(enforcer, "requests", "read"), handler.GetByEmployee)
		requests.GET("/:id", middleware.Authorize(enforcer, "requests", "read"), handler.GetById)
		requests.GET("/:id/attestation", middleware.Authorize(enforcer, "requests", "read"), handler.GetAttestation)
		if redisClient != nil {
			requests.POST("/:id/decision",
				middleware.Authorize(enforcer, "requests", "decide"),
				middleware.Idempotency(redisClient),
				handler.Decide,
			)
		} else {
			requests.POST("/:id/decision", middleware.Authorize(enforcer, "requests", "decide"), handler.Decide)
		}
		requests.PUT("/:id", middleware.Authorize(enforcer, "requests", "create"), handler.Edit)
		requests.DELETE("/:id", middleware.Authorize(enforcer, "requests", "create"), handler.Withdraw)
	}
}
