package middleware

import (
	"time"

	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	// Storefront requests per second allowed for one client ip.
	storefrontRate  = 10
	storefrontBurst = 30

	rateLimitVisitorTTL = 3 * time.Minute
)

type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// RecordRateLimitHit reports a rejected request to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

// Storefront limits the public storefront routes per client ip. Rejected
// requests answer 429 and are recorded as RateLimitHit events.
func (r *RateLimitMiddleware) Storefront() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      storefrontRate,
		Burst:     storefrontBurst,
		ExpiresIn: rateLimitVisitorTTL,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewBadRequestError("Could not identify the client.", false, nil, nil, nil)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().
				Str("client", identifier).
				Str("endpoint", c.Path()).
				Msg("rate limit exceeded")

			return errs.NewTooManyRequestsError()
		},
	})
}
