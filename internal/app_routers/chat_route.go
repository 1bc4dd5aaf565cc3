package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/Debasish241/RealTime-Chatapp/internal/configuration"
)

func ChatRouters(router *gin.Engine, container *configuration.Container) {
	authRequired := container.Tokens.Middleware()

	chatRoute := router.Group("/api/chat", authRequired)
	{
		chatRoute.POST("/new", container.ChatHandler.CreateChat)
		chatRoute.GET("/all", container.ChatHandler.GetAllChats)
		chatRoute.POST("/:chatId/message", container.ChatHandler.SendMessage)
		chatRoute.GET("/:chatId/messages", container.ChatHandler.GetMessages)
	}
}
