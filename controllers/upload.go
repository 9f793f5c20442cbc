package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"Zelvix/middleware"
	"Zelvix/pkg/preview"
	svc "Zelvix/pkg/services"
)

const NoFileReply = "No file uploaded."

type UploadController struct {
	store    *svc.UploadStore
	index    svc.UploadIndex
	previews preview.Registry
	maxBytes int64
}

func NewUploadController(store *svc.UploadStore, index svc.UploadIndex, previews preview.Registry, maxBytes int64) *UploadController {
	if index == nil {
		index = svc.NopIndex{}
	}
	if previews == nil {
		previews = preview.DefaultRegistry()
	}
	return &UploadController{store: store, index: index, previews: previews, maxBytes: maxBytes}
}

// Upload stores the "file" field, then answers with its preview and public
// URL. The file stays on disk even when the preview fails.
func (ctrl *UploadController) Upload(c *gin.Context) {
	if ctrl.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctrl.maxBytes)
	}
	who := middleware.RequesterKey(c)

	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			c.JSON(http.StatusBadRequest, gin.H{"preview": NoFileReply})
			return
		}
		log.Printf("[upload] %s: read form: %v", who, err)
		c.JSON(http.StatusInternalServerError, gin.H{"preview": preview.ErrorMessage})
		return
	}

	rec, err := ctrl.store.SaveMultipart(header)
	if err != nil {
		log.Printf("[upload] %s: %v", who, err)
		c.JSON(http.StatusInternalServerError, gin.H{"preview": preview.ErrorMessage})
		return
	}

	kind := preview.KindOf(rec.OriginalName)
	rec.Kind = kind.String()
	rec.SessionID = middleware.SessionID(c)
	if err := ctrl.index.Record(c.Request.Context(), rec); err != nil {
		log.Printf("[upload] index failed (ignored): %v", err)
	}

	text, err := ctrl.previews.Preview(c.Request.Context(), kind, rec.Path)
	if err != nil {
		log.Printf("[upload] %s: preview %s (%s): %v", who, rec.StoredName, kind, err)
		c.JSON(http.StatusInternalServerError, gin.H{"preview": preview.ErrorMessage})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preview": text, "fileUrl": rec.URL})
}
