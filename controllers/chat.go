package controllers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"Zelvix/middleware"
)

// InvalidChatRequestReply answers a /chat body that is not JSON.
const InvalidChatRequestReply = "Invalid request body."

// ChatReplier is satisfied by *services.ChatRelay.
type ChatReplier interface {
	Reply(ctx context.Context, message string) (string, error)
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat relays one message. Upstream failures answer 500 with the fallback
// reply so the widget always has text to show.
func Chat(relay ChatReplier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"reply": InvalidChatRequestReply})
			return
		}

		reply, err := relay.Reply(c.Request.Context(), req.Message)
		if err != nil {
			log.Printf("[chat] %s: relay failed: %v", middleware.RequesterKey(c), err)
			c.JSON(http.StatusInternalServerError, gin.H{"reply": reply})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reply": reply})
	}
}
