package controllers

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svc "Zelvix/pkg/services"
)

type slowRelay struct {
	stubRelay
	delay time.Duration
}

func (s *slowRelay) Reply(ctx context.Context, message string) (string, error) {
	time.Sleep(s.delay)
	return s.stubRelay.Reply(ctx, message)
}

type wsReply struct {
	Type  string `json:"type"`
	Reply string `json:"reply"`
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func dialChatWS(t *testing.T, relay ChatReplier) *websocket.Conn {
	t.Helper()
	return dialChatWSHandler(t, ChatWS(relay))
}

func dialChatWSHandler(t *testing.T, h gin.HandlerFunc) *websocket.Conn {
	t.Helper()
	r := gin.New()
	r.GET("/ws/chat", h)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestChatWSOneReplyPerFrame(t *testing.T) {
	relay := &stubRelay{reply: "hello there"}
	conn := dialChatWS(t, relay)

	for _, msg := range []string{"Ann: hi", "Ann: hours?"} {
		require.NoError(t, conn.WriteJSON(map[string]string{"type": "chat", "message": msg}))
		var got wsReply
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "reply", got.Type)
		assert.Equal(t, "hello there", got.Reply)
		assert.True(t, got.OK)
	}
	assert.Equal(t, []string{"Ann: hi", "Ann: hours?"}, relay.messages())
}

func TestChatWSRelayFailure(t *testing.T) {
	conn := dialChatWS(t, &stubRelay{reply: svc.ErrorReply, err: errors.New("boom")})

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "chat", "message": "hi"}))
	var got wsReply
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "reply", got.Type)
	assert.Equal(t, svc.ErrorReply, got.Reply)
	assert.False(t, got.OK)
}

func TestChatWSMalformedFrame(t *testing.T) {
	relay := &stubRelay{reply: "unused"}
	conn := dialChatWS(t, relay)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var got wsReply
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "error", got.Type)
	assert.NotEmpty(t, got.Error)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "stream", "message": "x"}))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "error", got.Type)

	// connection stays usable
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "chat", "message": "ok"}))
	got = wsReply{}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "reply", got.Type)
	assert.Equal(t, []string{"ok"}, relay.messages())
}

func TestChatWSSurvivesRelaySlowerThanPongWait(t *testing.T) {
	relay := &slowRelay{stubRelay: stubRelay{reply: "done"}, delay: 300 * time.Millisecond}
	conn := dialChatWSHandler(t, chatWS(relay, 150*time.Millisecond))

	for _, msg := range []string{"first", "second"} {
		require.NoError(t, conn.WriteJSON(map[string]string{"type": "chat", "message": msg}))
		var got wsReply
		require.NoError(t, conn.ReadJSON(&got), "after %q", msg)
		assert.Equal(t, "reply", got.Type)
		assert.Equal(t, "done", got.Reply)
	}
	assert.Equal(t, []string{"first", "second"}, relay.messages())
}
