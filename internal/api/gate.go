package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// lognameKey is the gin context key holding the authenticated identity
const lognameKey = "logname"

// Endpoints that bypass the gate entirely; they enforce their own
// authorization
var publicEndpoints = map[string]bool{
	"/uploads/:filename": true,
	"/accounts/auth/":    true,
	"/health":            true,
}

// Page views reachable while logged out
var publicPages = map[string]bool{
	"/accounts/login/":  true,
	"/accounts/":        true,
	"/accounts/create/": true,
}

// Gate resolves the session cookie into a logname for every request
// and enforces the login-required policy for page views. Mutating
// requests always pass through: their handlers must tell "not
// authenticated" apart from "bad input" themselves.
func (r *Router) Gate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(r.cookieName)
		logname := ""
		if token != "" {
			var err error
			logname, err = r.svc.Sessions().Logname(c.Request.Context(), token)
			if err != nil {
				r.abortError(c, err)
				return
			}
		}
		c.Set(lognameKey, logname)

		endpoint := c.FullPath()
		if publicEndpoints[endpoint] {
			c.Next()
			return
		}
		if logname != "" {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodGet {
			if publicPages[endpoint] {
				c.Next()
				return
			}
			// A navigation fallback, not an error
			c.Redirect(http.StatusFound, "/accounts/login/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// logname returns the authenticated identity for this request, "" when
// logged out
func logname(c *gin.Context) string {
	return c.GetString(lognameKey)
}
