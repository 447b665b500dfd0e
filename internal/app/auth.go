package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const metricsRealm = `Basic realm="metrics"`

// metricsAuthMiddleware guards /metrics with Basic Auth when enabled.
// Credentials are compared in constant time.
func metricsAuthMiddleware(enabled bool, username, password string) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok || !credentialsMatch(user, pass, username, password) {
			c.Header("WWW-Authenticate", metricsRealm)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func credentialsMatch(user, pass, wantUser, wantPass string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
	return userMatch && passMatch
}
