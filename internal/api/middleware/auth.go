package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskflow/internal/auth"
)

const subjectKey = "auth_subject"

// Auth requires a valid bearer token. The websocket route may pass it as
// ?token= instead, since browsers cannot set headers on upgrade requests.
// A nil signer disables the check.
func Auth(signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if signer == nil {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		subject, err := signer.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(subjectKey, subject)
		c.Next()
	}
}

// Subject returns the token subject set by Auth.
func Subject(c *gin.Context) string {
	return c.GetString(subjectKey)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
