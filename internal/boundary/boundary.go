// Package boundary wraps a remote load with two independent failure
// domains: a transient loading presentation while the fetch/instantiate is
// in flight, and a persistent error presentation when the load falls back
// or the loaded component fails during its own render.
package boundary

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/MFE-Works/shell_layer/internal/content"
	"github.com/MFE-Works/shell_layer/internal/metrics"
	"github.com/MFE-Works/shell_layer/internal/registry"
	"github.com/MFE-Works/shell_layer/pkg/logger"
)

// State is the boundary lifecycle state. Ready and Failed are terminal for
// a mount; re-entering Pending requires a fresh mount.
type State int

const (
	StatePending State = iota
	StateReady
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrorContext is the metadata handed to the error observation callback.
type ErrorContext struct {
	Remote     string
	Export     string
	Phase      string // currently always "render"
	OccurredAt time.Time
}

// Overrides carries the caller-supplied presentation content. All fields
// are optional; the boundary reads them and never mutates them.
type Overrides struct {
	// Loading replaces the default spinner while the load is in flight.
	Loading content.Renderable
	// Error replaces the default warning panel on render-phase failures.
	Error content.Renderable
	// OnError observes render-phase failures, exactly once per occurrence.
	OnError func(err error, ctx ErrorContext)
}

// Event describes one state transition, for observers such as the shell's
// websocket stream.
type Event struct {
	Remote string `json:"remote"`
	From   string `json:"from"`
	To     string `json:"to"`
	Error  string `json:"error,omitempty"`
}

// Observer receives state transition events.
type Observer func(Event)

// RemoteLoader is the loading dependency. Satisfied by *loader.Loader.
type RemoteLoader interface {
	Load(ctx context.Context, d registry.Descriptor) (content.Renderable, error)
}

// Boundary owns the load state for one remote mount. Instances are
// independent: one boundary's failure never leaks into another.
type Boundary struct {
	desc      registry.Descriptor
	overrides Overrides
	loader    RemoteLoader
	log       *logger.Logger
	observer  Observer

	mu          sync.Mutex
	state       State
	handle      content.Renderable
	failure     error
	absorbed    bool // Failed because the loader substituted its fallback
	errReported bool
	mounted     bool
	generation  uint64
	cancel      context.CancelFunc
}

// Option customizes a Boundary.
type Option func(*Boundary)

// WithObserver attaches a transition observer.
func WithObserver(obs Observer) Option {
	return func(b *Boundary) { b.observer = obs }
}

// WithLogger replaces the default logger.
func WithLogger(log *logger.Logger) Option {
	return func(b *Boundary) { b.log = log }
}

// New creates an unmounted boundary for the given remote.
func New(desc registry.Descriptor, ldr RemoteLoader, overrides Overrides, opts ...Option) *Boundary {
	b := &Boundary{
		desc:      desc,
		overrides: overrides,
		loader:    ldr,
		log:       logger.NewDefault("boundary"),
		state:     StatePending,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mount begins a fresh load. A second Mount invalidates the previous one:
// any still-pending settlement from the old mount becomes a no-op.
func (b *Boundary) Mount(ctx context.Context) {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.generation++
	gen := b.generation
	b.mounted = true
	b.state = StatePending
	b.handle = nil
	b.failure = nil
	b.absorbed = false
	b.errReported = false
	loadCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	go func() {
		handle, err := b.loader.Load(loadCtx, b.desc)
		if err != nil {
			// Only unusable descriptors reach here; treat like an
			// absorbed load failure so the mount still settles.
			b.log.WithError(err).WithField("remote", b.desc.Name).Warn("loader rejected descriptor")
			handle = content.Unavailable(b.desc.Export)
		}
		b.settle(gen, handle)
	}()
}

// Unmount detaches the boundary. A load that settles afterwards changes
// nothing and triggers no callbacks.
func (b *Boundary) Unmount() {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.mounted = false
	b.generation++
	b.mu.Unlock()
}

// State returns the current lifecycle state.
func (b *Boundary) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Remote returns the logical remote name this boundary is bound to.
func (b *Boundary) Remote() string { return b.desc.Name }

// settle applies the load outcome unless the mount has been superseded.
func (b *Boundary) settle(gen uint64, handle content.Renderable) {
	b.mu.Lock()
	if !b.mounted || gen != b.generation || b.state != StatePending {
		b.mu.Unlock()
		return
	}
	if content.IsUnavailable(handle) {
		b.state = StateFailed
		b.absorbed = true
	} else {
		b.state = StateReady
	}
	b.handle = handle
	to := b.state
	b.mu.Unlock()

	b.transition(StatePending, to, nil)
}

// Render writes exactly one of the loading, ready or error presentations.
// A ready component that fails mid-render is swapped for the error
// presentation without leaking partial output.
func (b *Boundary) Render(w io.Writer) error {
	b.mu.Lock()
	state := b.state
	handle := b.handle
	gen := b.generation
	b.mu.Unlock()

	switch state {
	case StatePending:
		return b.loadingPresentation().Render(w)

	case StateFailed:
		return b.failedPresentation().Render(w)

	case StateReady:
		var buf bytes.Buffer
		if err := renderSafely(handle, &buf); err != nil {
			b.fail(gen, err)
			return b.failedPresentation().Render(w)
		}
		_, err := w.Write(buf.Bytes())
		return err

	default:
		return fmt.Errorf("boundary %s: unknown state %d", b.desc.Name, state)
	}
}

// fail transitions Ready to Failed for a render-phase error and reports it
// exactly once, no matter how many renders observe the broken component.
func (b *Boundary) fail(gen uint64, err error) {
	b.mu.Lock()
	if gen != b.generation || b.state != StateReady {
		b.mu.Unlock()
		return
	}
	b.state = StateFailed
	b.failure = err
	b.absorbed = false
	report := !b.errReported
	b.errReported = true
	b.mu.Unlock()

	b.log.WithError(err).WithField("remote", b.desc.Name).Warn("remote component failed during render")
	b.transition(StateReady, StateFailed, err)

	if report && b.overrides.OnError != nil {
		b.overrides.OnError(err, ErrorContext{
			Remote:     b.desc.Name,
			Export:     b.desc.Export,
			Phase:      "render",
			OccurredAt: time.Now().UTC(),
		})
	}
}

func (b *Boundary) transition(from, to State, err error) {
	metrics.RecordBoundaryTransition(b.desc.Name, to.String())
	if b.observer != nil {
		evt := Event{Remote: b.desc.Name, From: from.String(), To: to.String()}
		if err != nil {
			evt.Error = err.Error()
		}
		b.observer(evt)
	}
}

func (b *Boundary) loadingPresentation() content.Renderable {
	if b.overrides.Loading != nil {
		return b.overrides.Loading
	}
	return content.Spinner()
}

// failedPresentation picks the error-domain content: the loader's own
// substitute panel when the failure was absorbed at the loader boundary,
// otherwise the caller override or the default warning panel.
func (b *Boundary) failedPresentation() content.Renderable {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.absorbed && b.handle != nil {
		return b.handle
	}
	if b.overrides.Error != nil {
		return b.overrides.Error
	}
	return content.ErrorPanel(b.desc.Export)
}

// renderSafely renders into w, converting panics into errors.
func renderSafely(r content.Renderable, w io.Writer) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render panic: %v", rec)
		}
	}()
	if r == nil {
		return fmt.Errorf("nil component handle")
	}
	return r.Render(w)
}
