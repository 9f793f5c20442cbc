package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	svc "Zelvix/pkg/services"
)

const (
	ContextSessionIDKey   = "widget_session_id"
	ContextSessionNameKey = "widget_session_name"
)

// SessionParser is satisfied by *services.SessionIssuer.
type SessionParser interface {
	Parse(token string) (*svc.WidgetSession, error)
}

// SessionIdentity attaches the widget session carried by an optional bearer
// token (or ?token= for WebSocket upgrades) to the context. Requests without
// a valid token continue anonymously; nothing is ever rejected here.
func SessionIdentity(sessions SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := BearerToken(c)
		if tokenStr != "" && sessions != nil {
			if sess, err := sessions.Parse(tokenStr); err == nil {
				c.Set(ContextSessionIDKey, sess.ID)
				c.Set(ContextSessionNameKey, sess.Name)
			}
		}
		c.Next()
	}
}

// BearerToken returns the token from "Authorization: Bearer <t>" or the
// token query parameter, or "".
func BearerToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		parts := strings.Fields(auth)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return strings.TrimSpace(c.Query("token"))
}

// SessionID returns the session id set by SessionIdentity, if any.
func SessionID(c *gin.Context) string {
	v, _ := c.Get(ContextSessionIDKey)
	s, _ := v.(string)
	return s
}

func clientIP(c *gin.Context) string {
	ip := strings.TrimSpace(c.ClientIP())
	if ip == "" {
		host, _, _ := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
		ip = host
	}
	return ip
}

// RequesterKey names the caller in log lines: "<session id>@<ip>", or
// "anon@<ip>" without a session.
func RequesterKey(c *gin.Context) string {
	sid := SessionID(c)
	if sid == "" {
		sid = "anon"
	}
	return sid + "@" + clientIP(c)
}
