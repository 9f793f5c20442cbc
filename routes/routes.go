package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Zelvix/controllers"
	"Zelvix/middleware"
	"Zelvix/pkg/config"
	"Zelvix/pkg/preview"
	svc "Zelvix/pkg/services"

	chatRoutes "Zelvix/routes/chat"
	uploadsRoutes "Zelvix/routes/uploads"
	websocketRoutes "Zelvix/routes/websocket"
	widgetRoutes "Zelvix/routes/widget"
)

// Dependencies are built once in main and shared read-only by handlers.
type Dependencies struct {
	Config    *config.Config
	Knowledge *svc.KnowledgeBase
	Relay     controllers.ChatReplier
	Uploads   *svc.UploadStore
	Index     svc.UploadIndex
	Previews  preview.Registry
	Sessions  *svc.SessionIssuer
}

func RegisterRoutes(r *gin.Engine, d Dependencies) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "Support chat relay running"})
	})
	r.GET("/health", controllers.Health(d.Config))

	uploadsRoutes.RegisterStatic(r, d.Uploads)

	api := r.Group("/")
	api.Use(middleware.SessionIdentity(d.Sessions))
	chatRoutes.Register(api, d.Relay)
	uploadsRoutes.Register(api, controllers.NewUploadController(d.Uploads, d.Index, d.Previews, d.Config.MaxUploadBytes()))
	widgetRoutes.Register(api, d.Knowledge, d.Sessions)
	websocketRoutes.Register(api, d.Relay)
}
