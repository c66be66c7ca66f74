package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/snapform/snapform-api/internal/metrics"
	"github.com/snapform/snapform-api/internal/utils"
)

// SubmissionRateLimit caps public submissions per client IP and form to max
// per minute. A max of zero disables the limit.
func SubmissionRateLimit(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + c.Params("id")
		},
		LimitReached: func(c *fiber.Ctx) error {
			metrics.SubmissionsRejected.WithLabelValues("RATE_LIMITED").Inc()
			return utils.RejectResponse(c, fiber.StatusTooManyRequests, "RATE_LIMITED",
				"Too many submissions, try again later", nil)
		},
	})
}
