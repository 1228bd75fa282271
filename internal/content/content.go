// Package content defines the renderable handle exchanged between the
// loader, the boundary wrapper and the host shell, together with the
// built-in fallback presentations.
package content

import (
	"fmt"
	"html"
	"io"
)

// Renderable is an opaque handle that can write its markup to a writer.
// Implementations may fail or panic while rendering; callers that need to
// survive that wrap the call in a boundary.
type Renderable interface {
	Render(w io.Writer) error
}

// HTML is a static renderable backed by a pre-built markup string.
type HTML string

// Render writes the markup verbatim.
func (h HTML) Render(w io.Writer) error {
	_, err := io.WriteString(w, string(h))
	return err
}

// Func adapts a plain function to the Renderable interface.
type Func func(w io.Writer) error

// Render invokes the wrapped function.
func (f Func) Render(w io.Writer) error { return f(w) }

// Spinner returns the default loading presentation shown while a remote
// load is in flight.
func Spinner() Renderable {
	return HTML(`<div class="mfe-loading" role="status"><span class="spinner"></span>Loading…</div>`)
}

// ErrorPanel returns the default error presentation used by the boundary
// wrapper when a loaded component fails during its own render.
func ErrorPanel(title string) Renderable {
	return HTML(fmt.Sprintf(
		`<div class="mfe-error" role="alert"><h3>Something went wrong</h3><p>%s could not be displayed.</p></div>`,
		html.EscapeString(title),
	))
}

// fallback marks the loader's substitute presentation so callers can tell
// absorbed failures apart from real remote output.
type fallback struct {
	HTML
}

// Unavailable returns the loader's substitute presentation for a remote
// that could not be fetched or instantiated. The only recovery offered is
// a manual full page reload.
func Unavailable(displayName string) Renderable {
	name := html.EscapeString(displayName)
	return fallback{HTML(fmt.Sprintf(
		`<div class="mfe-unavailable" role="alert">`+
			`<h3>Unable to load %s</h3>`+
			`<p>The %s service is currently unavailable.</p>`+
			`<form method="get"><input type="hidden" name="reload" value="1"/>`+
			`<button type="submit" class="mfe-retry">Retry</button></form>`+
			`</div>`,
		name, name,
	))}
}

// IsUnavailable reports whether the handle is the loader's substitute
// fallback rather than real remote output.
func IsUnavailable(r Renderable) bool {
	_, ok := r.(fallback)
	return ok
}
