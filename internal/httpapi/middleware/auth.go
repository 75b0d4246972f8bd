package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edirooss/leaderboard/internal/dispatcher"
	"github.com/edirooss/leaderboard/internal/registry"
)

const principalKey = "leaderboard.principal"

// KeyResolver is the subset of *registry.Registry the auth middleware
// needs, kept narrow so it's trivially fakeable in tests.
type KeyResolver interface {
	ResolveKey(apiKey string) (registry.KeyBinding, bool)
}

// APIKeyAuth resolves the x-api-key header against reg and stashes the
// resulting dispatcher.Principal on the Gin context. Per spec.md §6: a
// missing header is 400, an unknown key is 401 — there is no Basic/
// session/Bearer fallback chain here, unlike the teacher's admin-console
// auth; this service's callers are machines carrying one static key.
func APIKeyAuth(reg KeyResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("x-api-key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "missing x-api-key header"})
			return
		}

		kb, ok := reg.ResolveKey(apiKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unknown api key"})
			return
		}

		c.Set(principalKey, dispatcher.Principal{Board: kb.Board, Write: kb.Write})
		c.Next()
	}
}

// Principal retrieves the Principal stashed by APIKeyAuth.
func Principal(c *gin.Context) dispatcher.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(dispatcher.Principal); ok {
			return p
		}
	}
	return dispatcher.Principal{}
}
