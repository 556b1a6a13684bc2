// Package validation binds request payloads and validates them.
//
// It uses the `validator` library to enforce the rules declared in
// struct tags and turns validation failures into field errors the
// admin UI can show next to each input.
package validation
