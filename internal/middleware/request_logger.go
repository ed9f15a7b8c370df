package middleware

import (
	"regexp"
	"time"

	"github.com/colexalia/colexalia-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// quietRoutes are probed constantly; they log at debug level only
var quietRoutes = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestLogger tags each request with an id, puts a request-scoped logger on the request
// context and writes one access line when the handler returns. Errors recorded with c.Error
// are logged here even when the response hides them.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if !validRequestID.MatchString(requestID) {
			requestID = uuid.New().String()[:8]
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		reqLog := logger.WithRequestID(requestID)
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = reqLog.Error()
		case status >= 400:
			event = reqLog.Warn()
		case quietRoutes[route]:
			event = reqLog.Debug()
		default:
			event = reqLog.Info()
		}

		userID := GetUserID(c)
		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Bool("signed_in", userID != "")
		if userID != "" {
			event.Str("user_id", userID)
		}
		if last := c.Errors.Last(); last != nil {
			event.AnErr("error", last.Err)
		}
		event.Msg("request")
	}
}
