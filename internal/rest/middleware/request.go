package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/suicidekings/carclub/internal/types"
)

// HeaderRequestID is echoed on every response for correlation.
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware attaches a request id to the context, reusing the
// caller's if one was sent.
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx = types.SetRequestID(ctx, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(HeaderRequestID, requestID)

	c.Next()
}
