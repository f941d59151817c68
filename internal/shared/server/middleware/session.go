package middleware

import "github.com/gin-gonic/gin"

const (
	sessionIDKey = "sessionId"
	signedInKey  = "signedIn"
)

// SetSession records the page session handling this request so logging and
// rate limiting can attribute it.
func SetSession(c *gin.Context, id string, signedIn bool) {
	c.Set(sessionIDKey, id)
	c.Set(signedInKey, signedIn)
}

// SessionIDFromContext fetches the page session ID set by SetSession.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(sessionIDKey)
}

// SignedInFromContext reports whether the page session carries a profile.
func SignedInFromContext(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(signedInKey)
}
