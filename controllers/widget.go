package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"Zelvix/middleware"
	svc "Zelvix/pkg/services"
	utils "Zelvix/pkg/utills"
)

// WidgetConfig serves the document the widget fetches at startup.
func WidgetConfig(kb *svc.KnowledgeBase) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, kb.Widget())
	}
}

type sessionRequest struct {
	Name string `json:"name"`
}

// StartSession issues a widget session for a display name. A bearer token
// from an earlier session keeps the session id (name change).
func StartSession(issuer *svc.SessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if msg := utils.ValidateName(req.Name); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		sess, err := issuer.Issue(strings.TrimSpace(req.Name), middleware.BearerToken(c))
		if err != nil {
			log.Printf("[session] issue failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
		log.Printf("[session] started %s for %s", sess.ID, middleware.RequesterKey(c))
		c.JSON(http.StatusOK, sess)
	}
}
