// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns such as
// admin authentication (via Clerk), the admin session that flash
// messages are keyed by, request logging, CORS, rate limiting and panic
// recovery.
package middleware
