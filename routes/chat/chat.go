package chat

import (
	"github.com/gin-gonic/gin"

	"Zelvix/controllers"
)

func Register(g *gin.RouterGroup, relay controllers.ChatReplier) {
	g.POST("/chat", controllers.Chat(relay))
}
