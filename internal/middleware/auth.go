package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/go-commerce/internal/errs"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/labstack/echo/v4"
)

type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// RequireAuth verifies the Clerk session token in the Authorization
// header and stores the admin's identity in the Echo context.
//
// The admin session id is taken from the configured session header when
// present, else from the Clerk session, so flash messages follow the
// browser tab or the login respectively.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)

				response := errs.HTTPError{
					Code:     "UNAUTHORIZED",
					Message:  "Unauthorized",
					Status:   http.StatusUnauthorized,
					Override: false,
				}

				if err := json.NewEncoder(w).Encode(response); err != nil {
					auth.server.Logger.Error().
						Err(err).
						Str("function", "RequireAuth").
						Dur("duration", time.Since(start)).
						Msg("failed to write JSON response")
					return
				}

				auth.server.Logger.Warn().
					Str("function", "RequireAuth").
					Str("path", r.URL.Path).
					Dur("duration", time.Since(start)).
					Msg("rejected request without a valid session token")
			}))))(
		func(c echo.Context) error {
			start := time.Now()

			claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
			if !ok {
				auth.server.Logger.Error().
					Str("function", "RequireAuth").
					Str("request_id", GetRequestID(c)).
					Dur("duration", time.Since(start)).
					Msg("could not get session claims from context")

				return errs.NewUnauthorizedError("Unauthorized", false)
			}

			c.Set(UserIDKey, claims.Subject)
			c.Set(UserRoleKey, claims.ActiveOrganizationRole)
			c.Set("permissions", claims.Claims.ActiveOrganizationPermissions)

			sessionID := c.Request().Header.Get(auth.server.Config.Session.Header)
			if sessionID == "" {
				sessionID = claims.SessionID
			}
			if sessionID == "" {
				sessionID = claims.Subject
			}
			c.Set(SessionIDKey, sessionID)

			logger := GetLogger(c).With().
				Str("user_id", claims.Subject).
				Str("session_id", sessionID).
				Logger()
			c.Set(LoggerKey, &logger)

			logger.Debug().
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("admin authenticated")

			return next(c)
		})
}
