// Package shell composes the host application: a navigation frame with one
// independently bounded remote section per route.
package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/MFE-Works/shell_layer/internal/boundary"
	"github.com/MFE-Works/shell_layer/internal/config"
	"github.com/MFE-Works/shell_layer/internal/loader"
	"github.com/MFE-Works/shell_layer/internal/metrics"
	"github.com/MFE-Works/shell_layer/internal/registry"
	"github.com/MFE-Works/shell_layer/pkg/logger"
)

// Section is one navigable area of the shell, backed by its own boundary.
type Section struct {
	Title    string
	Route    string
	Remote   string
	boundary *boundary.Boundary
}

// Shell is the host application. It owns the remote registry, one boundary
// per configured section, and the event hub.
type Shell struct {
	cfg      *config.Config
	reg      *registry.Registry
	log      *logger.Logger
	hub      *EventHub
	reporter *ErrorReporter

	sections []*Section
	byRoute  map[string]*Section

	mountCtx context.Context
	started  time.Time
}

// New builds the shell from configuration. Every section gets its own
// boundary so failures stay contained to the section that caused them.
func New(cfg *config.Config, reg *registry.Registry, ldr boundary.RemoteLoader, log *logger.Logger) (*Shell, error) {
	if log == nil {
		log = logger.NewDefault("shell")
	}
	if ldr == nil {
		ldr = loader.New(log)
	}

	s := &Shell{
		cfg:      cfg,
		reg:      reg,
		log:      log,
		hub:      NewEventHub(log),
		reporter: NewErrorReporter(cfg.Shell.APIBase, log),
		byRoute:  make(map[string]*Section),
		mountCtx: context.Background(),
		started:  time.Now(),
	}

	for _, sc := range cfg.Sections {
		desc, ok := reg.Get(sc.Remote)
		if !ok {
			return nil, fmt.Errorf("shell: section %q references unknown remote %q", sc.Title, sc.Remote)
		}
		section := &Section{Title: sc.Title, Route: sc.Route, Remote: sc.Remote}
		section.boundary = boundary.New(desc, ldr, boundary.Overrides{
			OnError: func(err error, ctx boundary.ErrorContext) {
				log.WithError(err).WithField("remote", ctx.Remote).Error("remote render failure")
				s.reporter.Report(err, ctx)
			},
		}, boundary.WithObserver(s.hub.Broadcast), boundary.WithLogger(log))

		s.sections = append(s.sections, section)
		s.byRoute[sc.Route] = section
	}
	return s, nil
}

// MountAll starts loading every section. The context outlives individual
// requests; it is the lifetime of the shell itself.
func (s *Shell) MountAll(ctx context.Context) {
	s.mountCtx = ctx
	for _, sec := range s.sections {
		sec.boundary.Mount(ctx)
	}
}

// UnmountAll detaches every section and disconnects event subscribers.
func (s *Shell) UnmountAll() {
	for _, sec := range s.sections {
		sec.boundary.Unmount()
	}
	s.hub.Close()
}

// Handler returns the shell's HTTP surface.
func (s *Shell) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/app/{route}", s.handleSection).Methods("GET")
	r.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.Handle("/events", s.hub).Methods("GET")
	return metrics.InstrumentHandler(r)
}

func (s *Shell) handleIndex(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Title string
		Route string
		State string
	}
	entries := make([]entry, 0, len(s.sections))
	for _, sec := range s.sections {
		entries = append(entries, entry{
			Title: sec.Title,
			Route: sec.Route,
			State: sec.boundary.State().String(),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTmpl.Execute(w, struct {
		ShellTitle string
		Sections   []entry
	}{s.cfg.Shell.Title, entries})
	if err != nil {
		s.log.WithError(err).Warn("index render")
	}
}

func (s *Shell) handleSection(w http.ResponseWriter, r *http.Request) {
	route := mux.Vars(r)["route"]
	sec, ok := s.byRoute[route]
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Explicit retry from the fallback panel's reload form.
	if r.URL.Query().Get("reload") == "1" {
		sec.boundary.Mount(s.mountCtx)
		http.Redirect(w, r, "/app/"+route, http.StatusSeeOther)
		return
	}

	var body bytes.Buffer
	if err := sec.boundary.Render(&body); err != nil {
		s.log.WithError(err).WithField("route", route).Error("section render")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTmpl.Execute(w, struct {
		ShellTitle string
		Title      string
		Route      string
		Sections   []*Section
		Pending    bool
		Body       template.HTML
	}{
		ShellTitle: s.cfg.Shell.Title,
		Title:      sec.Title,
		Route:      route,
		Sections:   s.sections,
		Pending:    sec.boundary.State() == boundary.StatePending,
		Body:       template.HTML(body.String()),
	})
	if err != nil {
		s.log.WithError(err).Warn("section page render")
	}
}

func (s *Shell) handleHealthz(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":  "healthy",
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"remotes": s.reg.Len(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		health["memory_used_percent"] = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		health["cpu_percent"] = percents[0]
	}

	sections := make(map[string]string, len(s.sections))
	for _, sec := range s.sections {
		sections[sec.Route] = sec.boundary.State().String()
	}
	health["sections"] = sections

	writeJSON(w, http.StatusOK, health)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.ShellTitle}}</title></head>
<body class="mfe-shell">
<header><h1>{{.ShellTitle}}</h1></header>
<nav><ul>
{{range .Sections}}<li><a href="/app/{{.Route}}">{{.Title}}</a> <span class="state state-{{.State}}">{{.State}}</span></li>
{{end}}</ul></nav>
</body>
</html>
`))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} · {{.ShellTitle}}</title>
{{if .Pending}}<meta http-equiv="refresh" content="1">{{end}}
</head>
<body class="mfe-shell">
<header><h1>{{.ShellTitle}}</h1></header>
<nav><ul>
{{range .Sections}}<li><a href="/app/{{.Route}}"{{if eq .Route $.Route}} class="active"{{end}}>{{.Title}}</a></li>
{{end}}</ul></nav>
<main id="remote-outlet">
{{.Body}}
</main>
</body>
</html>
`))
