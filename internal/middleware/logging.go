package middleware

import (
	"time" // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Request ids
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// RequestIDHeader carries the per-request id back to the client
const RequestIDHeader = "X-Request-ID"

// RequestLogger stamps each request with an id and logs its outcome
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()        // Fresh id per request
		c.Header(RequestIDHeader, requestID) // Echo it to the client

		start := time.Now()
		entry := log.WithFields(logrus.Fields{
			"http.req.path":   c.Request.URL.Path, // Request path
			"http.req.method": c.Request.Method,   // HTTP method
			"http.req.id":     requestID,          // Request id
		})
		entry.Debug("request started")

		c.Next() // Run the handlers

		fields := logrus.Fields{
			"http.resp.took_ms": time.Since(start).Milliseconds(), // Latency
			"http.resp.status":  c.Writer.Status(),                // Status code
			"http.resp.bytes":   c.Writer.Size(),                  // Body size
		}
		if s, ok := CurrentSession(c); ok {
			fields["username"] = s.Username // Set by the auth middleware
		}
		entry.WithFields(fields).Info("request complete")
	}
}
