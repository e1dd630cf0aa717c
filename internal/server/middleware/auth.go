package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/recordhub/recordhub/internal/contexts"
	"github.com/recordhub/recordhub/internal/objects"
)

// AuthConfig configures the JWT bearer authentication.
type AuthConfig struct {
	// Secret signs and verifies tokens with HMAC.
	Secret string `json:"secret" yaml:"secret" conf:"secret"`
	// TenantClaim names the claim carrying the tenant id.
	TenantClaim string `json:"tenant_claim" yaml:"tenant_claim" conf:"tenant_claim"`
}

// ErrInvalidToken covers every token the middleware rejects.
var ErrInvalidToken = errors.New("invalid token")

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("Authorization header is required")
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("Authorization header must use the Bearer scheme")
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", errors.New("bearer token is empty")
	}

	return token, nil
}

// WithJWTAuth validates the bearer token and stores tenant, user and claims
// in the request context. The tenant claim defaults to "tenant", the user id
// comes from the subject claim.
func WithJWTAuth(config AuthConfig) gin.HandlerFunc {
	tenantClaim := config.TenantClaim
	if tenantClaim == "" {
		tenantClaim = "tenant"
	}

	return func(c *gin.Context) {
		token, err := extractBearerToken(c.Request)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		claims, err := parseToken(token, config.Secret)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		tenantID, err := uuid.Parse(claims.String(tenantClaim))
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, fmt.Errorf("%w: missing tenant claim", ErrInvalidToken))
			return
		}

		userID, err := uuid.Parse(claims.String("sub"))
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, fmt.Errorf("%w: missing subject claim", ErrInvalidToken))
			return
		}

		ctx := contexts.WithTenantID(c.Request.Context(), tenantID)
		ctx = contexts.WithUserID(ctx, userID)
		ctx = contexts.WithClaims(ctx, claims)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func parseToken(token, secret string) (objects.Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// Round-trip through JSON so claim values get the same normalization as
	// claims restored from a job payload.
	raw, err := json.Marshal(mapClaims)
	if err != nil {
		return nil, err
	}

	return objects.ParseClaims(string(raw))
}
