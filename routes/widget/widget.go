package widget

import (
	"github.com/gin-gonic/gin"

	"Zelvix/controllers"
	svc "Zelvix/pkg/services"
)

func Register(g *gin.RouterGroup, kb *svc.KnowledgeBase, sessions *svc.SessionIssuer) {
	g.GET("/chatConfig.json", controllers.WidgetConfig(kb))
	g.POST("/session", controllers.StartSession(sessions))
}
