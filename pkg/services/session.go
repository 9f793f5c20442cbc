package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	tokenstore "Zelvix/pkg/token"
)

const sessionTTL = 24 * time.Hour

var ErrInvalidSession = errors.New("invalid session token")

// WidgetSession identifies one widget conversation. It is not an
// authentication credential; the relay never rejects requests without one.
type WidgetSession struct {
	ID        string    `json:"sessionId"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`

	jti string
}

type sessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type SessionIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewSessionIssuer signs with secret; an empty secret gets a random one so
// tokens stay valid only for this process.
func NewSessionIssuer(secret string) *SessionIssuer {
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
	}
	return &SessionIssuer{secret: []byte(secret), now: time.Now}
}

// Issue creates a new session for name. When previous is a valid token its
// id is kept and the old token is revoked (name change).
func (s *SessionIssuer) Issue(name, previous string) (*WidgetSession, error) {
	id := uuid.NewString()
	if previous != "" {
		if old, err := s.Parse(previous); err == nil {
			id = old.ID
			tokenstore.RevokeToken(old.jti, old.ExpiresAt)
		}
	}

	now := s.now()
	exp := now.Add(sessionTTL)
	jti := uuid.NewString()
	claims := sessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}
	return &WidgetSession{ID: id, Name: name, Token: tokenStr, ExpiresAt: exp, jti: jti}, nil
}

// Parse validates tokenStr and returns the session it carries.
func (s *SessionIssuer) Parse(tokenStr string) (*WidgetSession, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// only accept HMAC signing
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Subject == "" || tokenstore.IsRevoked(claims.ID) {
		return nil, ErrInvalidSession
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return &WidgetSession{ID: claims.Subject, Name: claims.Name, Token: tokenStr, ExpiresAt: exp, jti: claims.ID}, nil
}
