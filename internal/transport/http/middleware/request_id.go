package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestID reuses the id from header when the caller sent one, otherwise mints a uuid.
func RequestID(header string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reqID string
		if header != "" {
			reqID = c.Get(header)
		}
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)
		c.SetUserContext(context.WithValue(c.UserContext(), requestIDKey{}, reqID))
		if header != "" {
			c.Set(header, reqID)
		}
		return c.Next()
	}
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
