package notification

import (
	"github.com/LamineOzilJr/memoire-master2/internal/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", middleware.Authorize(enforcer, "notifications", "read"), handler.GetMine)
		notifications.GET("/unread-count", middleware.Authorize(enforcer, "notifications", "read"), handler.GetUnreadCount)
		notifications.PATCH("/:id/read", middleware.Authorize(enforcer, "notifications", "read"), handler.MarkRead)
		notifications.PATCH("/read-all", middleware.Authorize(enforcer, "notifications", "read"), handler.MarkAllRead)
	}
}
