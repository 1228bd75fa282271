// Package remotehost serves the example remote bundles and their
// manifests, standing in for the per-remote dev servers of a real
// federation deployment.
package remotehost

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/MFE-Works/shell_layer/pkg/logger"
)

//go:embed assets
var assets embed.FS

// Handler serves manifests and bundles for the embedded remotes.
type Handler struct {
	fs      fs.FS
	remotes []string
	log     *logger.Logger
}

// New creates the handler over the embedded assets.
func New(log *logger.Logger) (*Handler, error) {
	if log == nil {
		log = logger.NewDefault("remotehost")
	}
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(sub, ".")
	if err != nil {
		return nil, err
	}
	var remotes []string
	for _, e := range entries {
		if e.IsDir() {
			remotes = append(remotes, e.Name())
		}
	}
	sort.Strings(remotes)

	return &Handler{fs: sub, remotes: remotes, log: log}, nil
}

// Remotes lists the embedded remote names.
func (h *Handler) Remotes() []string {
	out := make([]string, len(h.remotes))
	copy(out, h.remotes)
	return out
}

// Router returns the HTTP surface: one manifest and one bundle per remote.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/remotes", h.handleList).Methods("GET")
	r.HandleFunc("/remotes/{name}/manifest.json", h.serveAsset("manifest.json", "application/json")).Methods("GET")
	r.HandleFunc("/remotes/{name}/bundle.js", h.serveAsset("bundle.js", "application/javascript")).Methods("GET")
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"remotes": len(h.remotes),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Remotes())
}

func (h *Handler) serveAsset(file, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		data, err := fs.ReadFile(h.fs, name+"/"+file)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(data)
	}
}
