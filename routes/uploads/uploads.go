package uploads

import (
	"github.com/gin-gonic/gin"

	"Zelvix/controllers"
	svc "Zelvix/pkg/services"
)

// RegisterStatic serves stored uploads at /uploads/<storedName>.
func RegisterStatic(r *gin.Engine, store *svc.UploadStore) {
	r.Static("/uploads", store.BasePath())
}

func Register(g *gin.RouterGroup, ctrl *controllers.UploadController) {
	g.POST("/upload", ctrl.Upload)
}
