// Package render loads URLs and returns their rendered markup together
// with the HTTP status of the main document. Two implementations exist:
// a Chrome-backed renderer (rod + stealth) for JS-heavy pages and a
// plain HTTP client for static sites.
//
// A Session is exclusively owned by one analysis run: all candidate
// URLs of that run are rendered through the same session, and the
// session must be closed on every exit path.
package render

import "context"

// Result is the outcome of rendering one URL. Status is 0 when no
// response was received at all (navigation failure, timeout); callers
// treat that as "no content" rather than an error.
type Result struct {
	HTML   string
	Status int
}

// Session renders URLs within one logical browser context. Render
// absorbs navigation failures into the Result; it only returns an
// error for session-level faults.
type Session interface {
	Render(ctx context.Context, url string) (*Result, error)
	Close() error
}

// Renderer opens rendering sessions.
type Renderer interface {
	NewSession(ctx context.Context) (Session, error)
}
