package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pdf-role-chat/internal/helper"
	"pdf-role-chat/internal/session"
)

const (
	SessionHeader = "X-Session-ID"
	sessionKey    = "session"
)

// RequestLogger logs every request through zerolog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := log.Info()
		if c.Writer.Status() >= 500 {
			evt = log.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("session", c.Writer.Header().Get(SessionHeader)).
			Msg("Handled request")
	}
}

// Session attaches the caller's session, creating it on first use. Ids that
// are not UUIDs are replaced by a fresh one. The id is echoed in the response
// header.
func Session(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id != "" && !helper.IsUUID(id) {
			log.Debug().Str("session", id).Msg("Ignoring malformed session id")
			id = ""
		}
		sess := store.GetOrCreate(id)
		c.Header(SessionHeader, sess.ID())
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
