package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request identifier on both the inbound
	// request and the response.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin.Context key holding the request's identifier.
	RequestIDKey = "request_id"
)

// RequestIDMiddleware tags every request with an identifier. A value
// supplied by an upstream proxy in X-Request-ID is kept as-is; otherwise
// a fresh UUID is minted. The ID is stored under RequestIDKey for the
// logging middleware and echoed back in the response header so callers
// can quote it when reporting a problem.
//
// Register it ahead of the logger so log lines carry the ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
