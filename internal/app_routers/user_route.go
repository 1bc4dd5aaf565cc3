package approuters

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Debasish241/RealTime-Chatapp/internal/configuration"
	"github.com/Debasish241/RealTime-Chatapp/internal/ratelimit"
)

// perIPLimit throttles unauthenticated endpoints by client address.
func perIPLimit(limiter *ratelimit.MapLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests, slow down"})
			return
		}
		c.Next()
	}
}

func UserRouters(router *gin.Engine, container *configuration.Container) {
	authRequired := container.Tokens.Middleware()

	userRoute := router.Group("/api/user")
	{
		userRoute.POST("/login", perIPLimit(container.LoginLimiter), container.UserHandler.Login)
		userRoute.POST("/verify", container.UserHandler.Verify)
		userRoute.GET("/profile", authRequired, container.UserHandler.Profile)
		userRoute.PUT("/update", authRequired, container.UserHandler.UpdateName)
		userRoute.GET("/all", authRequired, container.UserHandler.GetAllUsers)
		userRoute.GET("/:id", authRequired, container.UserHandler.GetUser)
	}
}
