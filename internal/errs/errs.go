// Package errs defines the application's error types.
//
// Two shapes live here:
//   - HTTPError: the JSON error body returned to API clients.
//   - Exception: a domain error with a human message and an optional
//     numeric code (e.g. wishlist item 901 "not salable"). Admin actions
//     turn these into flash messages instead of failing the request.
package errs
