// Package loader fetches a remote's entry manifest, resolves the exposed
// module and instantiates the named export through a pluggable backend.
//
// Failure policy: network and instantiation failures never propagate as
// errors. Load resolves to a built-in "service unavailable" substitute so
// the end user sees the failure without the shell treating it as fatal.
// Only failures after substitution-point — the instantiated component (or
// the fallback itself) misbehaving at render time — surface further up.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MFE-Works/shell_layer/internal/content"
	"github.com/MFE-Works/shell_layer/internal/metrics"
	"github.com/MFE-Works/shell_layer/internal/registry"
	"github.com/MFE-Works/shell_layer/pkg/logger"
)

// MaxManifestSize bounds the entry manifest document.
const MaxManifestSize = 256 << 10

// Loader resolves remote descriptors into renderable component handles.
type Loader struct {
	client  *http.Client
	backend Backend
	log     *logger.Logger
}

// Option customizes a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the HTTP client. The loader imposes no timeout of
// its own; a hung fetch hangs the pending state unless the client's
// transport enforces one.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) { l.client = client }
}

// WithBackend replaces the instantiation backend.
func WithBackend(backend Backend) Option {
	return func(l *Loader) { l.backend = backend }
}

// New creates a loader with the goja backend and a plain HTTP client.
func New(log *logger.Logger, opts ...Option) *Loader {
	if log == nil {
		log = logger.NewDefault("loader")
	}
	l := &Loader{
		client:  &http.Client{},
		backend: NewGojaBackend(),
		log:     log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and instantiates the remote described by d. On any fetch or
// instantiation failure it resolves to the substitute presentation and a
// nil error; the error return is reserved for unusable descriptors, which
// indicate a caller bug rather than a remote failure.
func (l *Loader) Load(ctx context.Context, d registry.Descriptor) (content.Renderable, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	handle, err := l.load(ctx, d)
	if err != nil {
		l.log.WithError(err).WithField("remote", d.Name).Warn("remote load failed; substituting fallback")
		metrics.RecordRemoteLoad(d.Name, "fallback", time.Since(start))
		return content.Unavailable(displayName(d)), nil
	}

	metrics.RecordRemoteLoad(d.Name, "ready", time.Since(start))
	l.log.WithField("remote", d.Name).Debugf("remote loaded in %s", time.Since(start))
	return handle, nil
}

func (l *Loader) load(ctx context.Context, d registry.Descriptor) (content.Renderable, error) {
	manifestData, err := l.fetch(ctx, d.Entry, MaxManifestSize)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}

	if _, err := parseManifest(manifestData); err != nil {
		return nil, err
	}

	mod, err := resolveExpose(manifestData, d.Expose)
	if err != nil {
		return nil, err
	}

	bundleURL, err := resolveURL(d.Entry, mod.URL)
	if err != nil {
		return nil, fmt.Errorf("resolve bundle url: %w", err)
	}

	source, err := l.fetch(ctx, bundleURL, MaxBundleSize)
	if err != nil {
		return nil, fmt.Errorf("fetch bundle: %w", err)
	}

	export := d.Export
	if strings.TrimSpace(mod.Export) != "" {
		export = mod.Export
	}

	props := map[string]interface{}{
		"remote": d.Name,
		"expose": d.Expose,
	}
	handle, err := l.backend.Instantiate(ctx, source, export, props)
	if err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", d.Expose, err)
	}
	return handle, nil
}

// fetch GETs a resource, rejecting error statuses and oversized bodies.
func (l *Loader) fetch(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/javascript, text/javascript")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}
	return data, nil
}

// resolveURL resolves a possibly-relative module URL against the manifest
// entry URL.
func resolveURL(entry, moduleURL string) (string, error) {
	base, err := url.Parse(entry)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(moduleURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// displayName picks the human-facing name used in the substitute panel:
// the component export reads better than the logical remote name.
func displayName(d registry.Descriptor) string {
	if strings.TrimSpace(d.Export) != "" {
		return d.Export
	}
	return d.Name
}
