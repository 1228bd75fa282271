package loader

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGojaInstantiateAndRender(t *testing.T) {
	source := []byte(`
function Panel(props) {
  return "<p>" + props.remote + ":" + props.expose + "</p>";
}
exports.Panel = Panel;
`)
	b := NewGojaBackend()
	handle, err := b.Instantiate(context.Background(), source, "Panel", map[string]interface{}{
		"remote": "x", "expose": "./Panel",
	})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	var buf bytes.Buffer
	if err := handle.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.String() != "<p>x:./Panel</p>" {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestGojaGlobalExport(t *testing.T) {
	source := []byte(`function Panel() { return "<i>ok</i>"; }`)
	b := NewGojaBackend()
	handle, err := b.Instantiate(context.Background(), source, "Panel", nil)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	var buf bytes.Buffer
	if err := handle.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestGojaMissingExport(t *testing.T) {
	b := NewGojaBackend()
	if _, err := b.Instantiate(context.Background(), []byte(`var x = 1;`), "Panel", nil); err == nil {
		t.Fatal("expected missing export to fail instantiation")
	}
}

func TestGojaNonFunctionExport(t *testing.T) {
	b := NewGojaBackend()
	if _, err := b.Instantiate(context.Background(), []byte(`exports.Panel = 42;`), "Panel", nil); err == nil {
		t.Fatal("expected non-function export to fail instantiation")
	}
}

func TestGojaEvaluationErrorFailsInstantiation(t *testing.T) {
	b := NewGojaBackend()
	if _, err := b.Instantiate(context.Background(), []byte(`throw new Error("boom");`), "Panel", nil); err == nil {
		t.Fatal("expected a throwing bundle to fail instantiation")
	}
}

func TestGojaRenderThrowSurfacesAsError(t *testing.T) {
	source := []byte(`
exports.Panel = function() { throw new Error("render exploded"); };
`)
	b := NewGojaBackend()
	handle, err := b.Instantiate(context.Background(), source, "Panel", nil)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	var buf bytes.Buffer
	err = handle.Render(&buf)
	if err == nil {
		t.Fatal("expected render error")
	}
	if !strings.Contains(err.Error(), "render exploded") {
		t.Fatalf("error %q does not carry the thrown message", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("failed render leaked output: %q", buf.String())
	}
}

func TestGojaEmptyBundle(t *testing.T) {
	b := NewGojaBackend()
	if _, err := b.Instantiate(context.Background(), nil, "Panel", nil); err == nil {
		t.Fatal("expected empty bundle to fail")
	}
}

func TestGojaCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewGojaBackend()
	// An infinite loop would hang forever without the interrupt.
	_, err := b.Instantiate(ctx, []byte(`while (true) {}`), "Panel", nil)
	if err == nil {
		t.Fatal("expected cancelled evaluation to fail")
	}
}
