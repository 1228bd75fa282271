package loader

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/MFE-Works/shell_layer/internal/content"
)

// MaxBundleSize bounds the module source a backend will evaluate.
const MaxBundleSize = 8 << 20

// evalTimeout caps bundle evaluation when the caller sets no deadline.
const evalTimeout = 10 * time.Second

// Backend links a fetched module bundle and extracts a named export as a
// renderable component. Implementations decide what a "bundle" is; the
// default interprets JavaScript in an embedded interpreter.
type Backend interface {
	Instantiate(ctx context.Context, source []byte, export string, props map[string]interface{}) (content.Renderable, error)
}

// GojaBackend evaluates JavaScript bundles with goja. A bundle exports
// components either as globals or on an `exports` object; a component is a
// function taking a props object and returning an HTML string.
type GojaBackend struct{}

// NewGojaBackend returns the default JavaScript backend.
func NewGojaBackend() *GojaBackend {
	return &GojaBackend{}
}

// Instantiate evaluates the bundle in a fresh VM and binds the named
// export. Evaluation errors and missing exports are instantiation
// failures; errors thrown by the component when it later renders are not —
// they surface from the returned handle's Render.
func (b *GojaBackend) Instantiate(ctx context.Context, source []byte, export string, props map[string]interface{}) (content.Renderable, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("empty module bundle")
	}
	if len(source) > MaxBundleSize {
		return nil, fmt.Errorf("module bundle exceeds %d bytes", MaxBundleSize)
	}

	vm := goja.New()

	timeout := evalTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-time.After(timeout):
			vm.Interrupt("evaluation timeout")
		case <-ctx.Done():
			vm.Interrupt("evaluation cancelled")
		case <-done:
		}
	}()
	defer close(done)

	exports := vm.NewObject()
	if err := vm.Set("exports", exports); err != nil {
		return nil, fmt.Errorf("set exports: %w", err)
	}

	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	_ = vm.Set("console", console)

	if _, err := vm.RunString(string(source)); err != nil {
		return nil, fmt.Errorf("evaluate bundle: %w", err)
	}

	value := exports.Get(export)
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		value = vm.Get(export)
	}
	component, ok := goja.AssertFunction(value)
	if !ok {
		return nil, fmt.Errorf("export %q is not a function", export)
	}

	jsProps := vm.ToValue(props)
	return &gojaComponent{vm: vm, fn: component, props: jsProps}, nil
}

// gojaComponent is a live component handle. The VM is single-threaded, so
// renders are serialized; concurrent use from multiple boundaries is not a
// supported pattern (each boundary owns its own handle).
type gojaComponent struct {
	mu    sync.Mutex
	vm    *goja.Runtime
	fn    goja.Callable
	props goja.Value
}

// Render invokes the component and writes its markup. A throw inside the
// component surfaces as an error for the enclosing boundary to absorb.
func (c *gojaComponent) Render(w io.Writer) error {
	c.mu.Lock()
	value, err := c.fn(goja.Undefined(), c.props)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("component render: %w", err)
	}
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return fmt.Errorf("component render: no output")
	}
	_, err = io.WriteString(w, value.String())
	return err
}
