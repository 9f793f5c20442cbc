package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"Zelvix/middleware"
)

const (
	wsReadLimit = 1 << 20 // 1MB
	wsPongWait  = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

type wsChatFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ChatWS answers chat frames over a WebSocket, one reply per frame.
// Client protocol (JSON messages):
//
//	-> {type: "chat", message: string}
//	<- {type: "reply", reply: string, ok: bool}
//	<- {type: "error", error: string}
func ChatWS(relay ChatReplier) gin.HandlerFunc {
	return chatWS(relay, wsPongWait)
}

// chatWS closes the socket when no frame or pong arrives within pongWait.
// Time spent inside the relay does not count against it.
func chatWS(relay ChatReplier, pongWait time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade error: %v", err)
			return
		}
		defer conn.Close()
		who := middleware.RequesterKey(c)

		conn.SetReadLimit(wsReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		go keepAlive(ctx, conn, pongWait*5/6)

		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("[ws] %s: read: %v", who, err)
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
				continue
			}

			var frame wsChatFrame
			if err := json.Unmarshal(msg, &frame); err != nil || strings.ToLower(strings.TrimSpace(frame.Type)) != "chat" {
				if err := conn.WriteJSON(gin.H{"type": "error", "error": "invalid chat payload"}); err != nil {
					return
				}
				continue
			}

			reply, err := relay.Reply(ctx, frame.Message)
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			ok := err == nil
			if !ok && !errors.Is(err, context.Canceled) {
				log.Printf("[ws] %s: relay failed: %v", who, err)
			}
			if err := conn.WriteJSON(gin.H{"type": "reply", "reply": reply, "ok": ok}); err != nil {
				return
			}
		}
	}
}

func keepAlive(ctx context.Context, conn *websocket.Conn, period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}
