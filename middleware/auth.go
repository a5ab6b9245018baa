package middleware

import (
	"net/http"
	"strings"

	"kidala/auth"
	"kidala/utils"

	"github.com/gin-gonic/gin"
)

// Access policies. AccessDefault treats a missing or invalid token as
// an anonymous caller; AccessAdmin rejects it outright.
const (
	AccessDefault = "default"
	AccessAdmin   = "admin"
)

const (
	ctxUserID = "user_id"
	ctxDomain = "token_domain"
)

// TokenCheck resolves the bearer token under the given access policy
// and stores the identity on the request context. Validation failures
// never propagate: they degrade to anonymous under the default policy
// and to a 401 under the admin policy.
func TokenCheck(issuer *auth.TokenIssuer, policy string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))

		var claims *auth.Claims
		if tokenString != "" {
			claims, _ = issuer.Validate(tokenString)
		}

		if claims == nil {
			if policy == AccessAdmin {
				utils.Error(c, http.StatusUnauthorized, "authorization required")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if policy == AccessAdmin && claims.Domain != auth.DomainAdmin {
			utils.Error(c, http.StatusUnauthorized, "authorization required")
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxDomain, claims.Domain)
		c.Next()
	}
}

// bearerToken accepts both "Bearer <token>" and a bare token, which is
// what older clients send.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return header
}

// CallerID returns the resolved identity id, or "" for anonymous
// callers.
func CallerID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// CallerDomain returns the trust domain of the presented token.
func CallerDomain(c *gin.Context) string {
	return c.GetString(ctxDomain)
}
