package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"glimpse/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// JWTProvider resolves HMAC-signed bearer tokens to principals and
// tracks the signed-in state for the process.
type JWTProvider struct {
	secret []byte

	mu       sync.RWMutex
	current  *Principal
	handlers map[int]AuthStateHandler
	nextID   int
}

// NewJWTProvider creates a provider validating tokens with secret.
func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{
		secret:   []byte(secret),
		handlers: make(map[int]AuthStateHandler),
	}
}

var _ Provider = (*JWTProvider)(nil)

// ParseToken validates tokenString and extracts the principal. The
// subject claim is required; email and name are optional display
// metadata.
func (p *JWTProvider) ParseToken(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, models.NewUnauthorizedError("Invalid token structure - missing subject")
	}

	principal := &Principal{ID: sub}
	if email, ok := claims["email"].(string); ok {
		principal.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		principal.DisplayName = name
	}
	return principal, nil
}

// MintToken issues a token for principal, valid for ttl. Used by the
// demo binary and tests; a production deployment gets tokens from the
// real identity provider.
func (p *JWTProvider) MintToken(principal *Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   principal.ID,
		"email": principal.Email,
		"name":  principal.DisplayName,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// SignIn validates tokenString and publishes the new principal to every
// auth-state handler.
func (p *JWTProvider) SignIn(tokenString string) (*Principal, error) {
	principal, err := p.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = principal
	handlers := p.snapshotHandlersLocked()
	p.mu.Unlock()

	for _, h := range handlers {
		h(principal)
	}
	return principal, nil
}

// SignOut clears the signed-in principal and notifies handlers with nil.
func (p *JWTProvider) SignOut() {
	p.mu.Lock()
	p.current = nil
	handlers := p.snapshotHandlersLocked()
	p.mu.Unlock()

	for _, h := range handlers {
		h(nil)
	}
}

func (p *JWTProvider) CurrentPrincipal(_ context.Context) (*Principal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, nil
}

func (p *JWTProvider) OnAuthStateChanged(handler AuthStateHandler) CancelFunc {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.handlers[id] = handler
	current := p.current
	p.mu.Unlock()

	handler(current)

	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

func (p *JWTProvider) snapshotHandlersLocked() []AuthStateHandler {
	handlers := make([]AuthStateHandler, 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}
	return handlers
}
