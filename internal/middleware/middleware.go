package middleware

import (
	"freshkeep-backend/domain"
	"freshkeep-backend/internal/api/presenters"
	"freshkeep-backend/internal/utils/metrics"
	"freshkeep-backend/pkg/ratelimit"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const maxDeviceIDLength = 128

type (
	Middleware interface {
		CORSMiddleware() fiber.Handler
		BareBodyMiddleware() fiber.Handler
		DeviceMiddleware() fiber.Handler
		ConnectionLimitMiddleware() fiber.Handler
	}

	middleware struct {
		limiter *ratelimit.ConnectionLimiter
		now     func() time.Time
	}
)

func NewMiddleware(limiter *ratelimit.ConnectionLimiter, now func() time.Time) Middleware {
	if now == nil {
		now = time.Now
	}
	return &middleware{limiter: limiter, now: now}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + domain.HeaderDeviceID,
	})
}

// BareBodyMiddleware marks a route whose rejections are written as
// {"error": message} instead of the response envelope.
func (m *middleware) BareBodyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(domain.LocalsBareBody, true)
		return c.Next()
	}
}

// DeviceMiddleware requires the X-Device-ID header and stores it in locals.
func (m *middleware) DeviceMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		deviceID := strings.TrimSpace(c.Get(domain.HeaderDeviceID))
		if deviceID == "" || len(deviceID) > maxDeviceIDLength {
			return reject(c, fiber.StatusBadRequest, domain.MessageMissingDeviceID)
		}
		c.Locals(domain.LocalsDeviceID, deviceID)
		return c.Next()
	}
}

// ConnectionLimitMiddleware applies the per-IP fixed window.
func (m *middleware) ConnectionLimitMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := m.limiter.Check(c.IP(), m.now())

		c.Set("X-RateLimit-Limit", strconv.Itoa(m.limiter.Max()))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			retryAfter := int(res.ResetAt.Sub(m.now()).Seconds()) + 1
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			metrics.Count(c.UserContext(), metrics.ConnectionDenials, 1)
			return reject(c, fiber.StatusTooManyRequests, domain.MessageTooManyRequests)
		}
		return c.Next()
	}
}

func reject(c *fiber.Ctx, status int, message string) error {
	if bare, _ := c.Locals(domain.LocalsBareBody).(bool); bare {
		return presenters.BareErrorResponse(c, status, message)
	}
	return presenters.ErrorResponse(c, status, message, nil)
}

// DeviceID reads the identifier stored by DeviceMiddleware.
func DeviceID(c *fiber.Ctx) string {
	deviceID, _ := c.Locals(domain.LocalsDeviceID).(string)
	return deviceID
}
