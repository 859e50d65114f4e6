package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const (
	sessionCtxKey ctxKey = "session"
	sessionHeader        = "X-Session-ID"
	sessionMaxAge        = 30 * 24 * 60 * 60
)

// sessionMiddleware scopes every request to one storage partition. The id
// comes from the cookie, then the header; a missing or malformed id starts a
// new session.
func sessionMiddleware(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if v, err := c.Cookie(cookieName); err == nil {
			id = v
		}
		if id == "" {
			id = c.GetHeader(sessionHeader)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, id, sessionMaxAge, "/", "", false, true)
		c.Header(sessionHeader, id)

		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	id, _ := c.Request.Context().Value(sessionCtxKey).(string)
	return id
}
