package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

type principalKey struct{}
type emailKey struct{}

// Claims are the session token claims this service reads. Tokens are issued elsewhere.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Authenticate validates the bearer or cookie token with RS256 and puts the
// principal ID (sub) and email in the request context. It only establishes who
// the caller is; what they may do is decided downstream.
func Authenticate(publicKey *rsa.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := SessionTokenFromRequest(r)
			if tokenString == "" {
				http.Error(w, "missing or invalid authorization", http.StatusUnauthorized)
				return
			}
			claims, err := ParseToken(tokenString, publicKey)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := WithPrincipal(r.Context(), claims.Subject, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParseToken verifies an RS256 token and returns its claims. Tokens without an
// expiry or a subject are rejected.
func ParseToken(tokenString string, publicKey *rsa.PublicKey) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodRS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// WithPrincipal stores the authenticated principal in ctx.
func WithPrincipal(ctx context.Context, principalID, email string) context.Context {
	ctx = context.WithValue(ctx, principalKey{}, principalID)
	return context.WithValue(ctx, emailKey{}, email)
}

// PrincipalIDFromContext returns the authenticated principal ID, or "" if not set.
func PrincipalIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(principalKey{}).(string)
	return v
}

func EmailFromContext(ctx context.Context) string {
	v, _ := ctx.Value(emailKey{}).(string)
	return v
}
