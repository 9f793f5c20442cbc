package websocket

import (
	"github.com/gin-gonic/gin"

	"Zelvix/controllers"
)

func Register(g *gin.RouterGroup, relay controllers.ChatReplier) {
	g.GET("/ws/chat", controllers.ChatWS(relay))
}
