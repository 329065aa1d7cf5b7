package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/jfbarahonag/mcp-logs/internal/services"
)

const (
	CtxRequestID    = "request_id"
	HeaderRequestID = "X-Request-ID"

	maxRequestIDLen = 128
)

// RequestIDMiddleware takes the caller's X-Request-ID, or makes one, and
// exposes it in Locals, in the response header and as the invocation id of
// any tool call made with c.UserContext().
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Header values point into the request buffer, which fasthttp reuses.
		reqID := utils.CopyString(c.Get(HeaderRequestID))
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.NewString()
		}

		c.Locals(CtxRequestID, reqID)
		c.SetUserContext(services.ContextWithInvocationID(c.UserContext(), reqID))
		c.Set(HeaderRequestID, reqID)
		return c.Next()
	}
}
