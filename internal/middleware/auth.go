package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/client"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller
type Identity struct {
	UserID string
	Role   string
	Token  string
}

type identityKey struct{}

// IdentityFrom returns the caller identity attached by Authenticate
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Authenticate validates an optional bearer token. Requests without a token
// pass through anonymously; a present but invalid token is rejected.
// The websocket handshake can carry the token in the "token" query parameter.
func Authenticate(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := ParseToken(raw, secret)
			if err != nil {
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, id)
			ctx = client.WithToken(ctx, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			http.Error(w, "Unauthorized: token required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests and callers whose role is not listed
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: token required", http.StatusUnauthorized)
				return
			}

			allowed := false
			for _, role := range roles {
				if id.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ParseToken verifies an HMAC-signed token and extracts the caller identity
func ParseToken(raw, secret string) (Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{Token: raw}
	if role, ok := claims["role"].(string); ok {
		id.Role = role
	}
	id.UserID = claimString(claims["userId"])
	if id.UserID == "" {
		id.UserID = claimString(claims["id"])
	}
	if id.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

func claimString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
