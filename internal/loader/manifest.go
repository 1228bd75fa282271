package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Manifest is the entry document a remote publishes: identity plus the
// table of exposed modules.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ExposedModule locates one exposed module inside a remote bundle.
type ExposedModule struct {
	// URL of the module bundle, absolute or relative to the manifest URL.
	URL string `json:"url"`
	// Export optionally overrides the export name from the descriptor.
	Export string `json:"export"`
}

// parseManifest validates the manifest header fields.
func parseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return Manifest{}, fmt.Errorf("parse manifest: name is required")
	}
	return m, nil
}

// resolveExpose looks up an exposed path such as "./UserApp" in the
// manifest's exposes table. Exposed paths are arbitrary keys, so the lookup
// goes through gjson with the key escaped rather than a fixed schema.
func resolveExpose(data []byte, expose string) (ExposedModule, error) {
	result := gjson.GetBytes(data, "exposes."+escapeKey(expose))
	if !result.Exists() {
		return ExposedModule{}, fmt.Errorf("manifest does not expose %q", expose)
	}

	var mod ExposedModule
	if result.IsObject() {
		if err := json.Unmarshal([]byte(result.Raw), &mod); err != nil {
			return ExposedModule{}, fmt.Errorf("exposed module %q: %w", expose, err)
		}
	} else {
		// Shorthand form: "./UserApp": "user_app.js"
		mod.URL = result.String()
	}

	if strings.TrimSpace(mod.URL) == "" {
		return ExposedModule{}, fmt.Errorf("exposed module %q has no url", expose)
	}
	return mod, nil
}

// escapeKey escapes gjson path metacharacters so exposed paths like
// "./UserApp" address a literal object key.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
