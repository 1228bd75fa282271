package mockapi

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/MFE-Works/shell_layer/internal/errors"
	"github.com/MFE-Works/shell_layer/pkg/logger"
)

// Handler serves the mock API over HTTP.
type Handler struct {
	store  *Store
	auth   *AuthStore
	tokens *TokenIssuer
	log    *logger.Logger
}

// NewHandler wires the mock API routes onto a fresh router.
func NewHandler(store *Store, auth *AuthStore, tokens *TokenIssuer, log *logger.Logger) (*Handler, http.Handler) {
	if log == nil {
		log = logger.NewDefault("mockapi")
	}
	h := &Handler{store: store, auth: auth, tokens: tokens, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/", h.handleRoot).Methods("GET")
	r.HandleFunc("/health", h.handleHealth).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users", h.handleListUsers).Methods("GET")
	api.HandleFunc("/users", h.handleCreateUser).Methods("POST")
	api.HandleFunc("/users/{id:[0-9]+}", h.handleGetUser).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}", h.handleUpdateUser).Methods("PUT")
	api.HandleFunc("/users/{id:[0-9]+}", h.handleDeleteUser).Methods("DELETE")

	api.HandleFunc("/data", h.handleListRows).Methods("GET")
	api.HandleFunc("/data", h.handleCreateRow).Methods("POST")
	api.HandleFunc("/data/{id:[0-9]+}", h.handleGetRow).Methods("GET")
	api.HandleFunc("/data/{id:[0-9]+}", h.handleUpdateRow).Methods("PUT")
	api.HandleFunc("/data/{id:[0-9]+}", h.handleDeleteRow).Methods("DELETE")

	api.HandleFunc("/analytics", h.handleAnalytics).Methods("GET")
	api.HandleFunc("/analytics/metrics", h.handleAnalyticsMetrics).Methods("GET")
	api.HandleFunc("/analytics/charts/line", h.handleLineChart).Methods("GET")
	api.HandleFunc("/analytics/charts/bar", h.handleBarChart).Methods("GET")
	api.HandleFunc("/analytics/charts/pie", h.handlePieChart).Methods("GET")

	api.HandleFunc("/settings", h.handleGetSettings).Methods("GET")
	api.HandleFunc("/settings", h.handleUpdateSettings).Methods("PUT")
	api.HandleFunc("/settings/reset", h.handleResetSettings).Methods("POST")

	// Fixed error routes must precede the {id} route.
	api.HandleFunc("/errors", h.handleReportError).Methods("POST")
	api.HandleFunc("/errors", h.handleListErrors).Methods("GET")
	api.HandleFunc("/errors", h.handleClearErrors).Methods("DELETE")
	api.HandleFunc("/errors/stats", h.handleErrorStats).Methods("GET")
	api.HandleFunc("/errors/export/json", h.handleExportErrors).Methods("GET")
	api.HandleFunc("/errors/bulk-resolve", h.handleBulkResolve).Methods("POST")
	api.HandleFunc("/errors/{id}", h.handleGetError).Methods("GET")
	api.HandleFunc("/errors/{id}", h.handleUpdateError).Methods("PATCH")
	api.HandleFunc("/errors/{id}", h.handleDeleteError).Methods("DELETE")

	api.HandleFunc("/auth/login", h.handleLogin).Methods("POST")
	api.HandleFunc("/auth/refresh", h.handleRefresh).Methods("POST")
	api.HandleFunc("/auth/logout", h.requireAuth(h.handleLogout)).Methods("POST")
	api.HandleFunc("/auth/me", h.requireAuth(h.handleMe)).Methods("GET")

	return h, r
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "shell-layer mock API",
		"version": "1.0.0",
		"endpoints": []string{
			"/api/users", "/api/data", "/api/analytics",
			"/api/settings", "/api/errors", "/api/auth",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// --- users ---

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.ListUsers())
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	u, err := h.store.GetUser(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in UserCreate
	if err := h.decodeJSON(w, r, &in); err != nil {
		return
	}
	if in.Email == "" || in.Username == "" {
		h.writeError(w, errors.BadRequest("email and username are required"))
		return
	}
	h.writeJSON(w, http.StatusCreated, h.store.CreateUser(in))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in UserUpdate
	if err := h.decodeJSON(w, r, &in); err != nil {
		return
	}
	u, err := h.store.UpdateUser(pathInt(r, "id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteUser(pathInt(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// --- data rows ---

func (h *Handler) handleListRows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := DataFilter{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Skip:     queryInt(q.Get("skip"), 0),
		Limit:    queryInt(q.Get("limit"), 100),
	}
	h.writeJSON(w, http.StatusOK, h.store.ListRows(f))
}

func (h *Handler) handleGetRow(w http.ResponseWriter, r *http.Request) {
	row, err := h.store.GetRow(pathInt(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, row)
}

func (h *Handler) handleCreateRow(w http.ResponseWriter, r *http.Request) {
	var in DataRowCreate
	if err := h.decodeJSON(w, r, &in); err != nil {
		return
	}
	if in.Name == "" {
		h.writeError(w, errors.BadRequest("name is required"))
		return
	}
	h.writeJSON(w, http.StatusCreated, h.store.CreateRow(in))
}

func (h *Handler) handleUpdateRow(w http.ResponseWriter, r *http.Request) {
	var in DataRowUpdate
	if err := h.decodeJSON(w, r, &in); err != nil {
		return
	}
	row, err := h.store.UpdateRow(pathInt(r, "id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, row)
}

func (h *Handler) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteRow(pathInt(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "data row deleted"})
}

// --- analytics ---

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Analytics())
}

func (h *Handler) handleAnalyticsMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Analytics().Metrics)
}

func (h *Handler) handleLineChart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Analytics().LineChart)
}

func (h *Handler) handleBarChart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Analytics().BarChart)
}

func (h *Handler) handlePieChart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Analytics().PieChart)
}

// --- settings ---

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.GetSettings())
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in SettingsUpdate
	if err := h.decodeJSON(w, r, &in); err != nil {
		return
	}
	if in.ThemeMode != nil && *in.ThemeMode != "light" && *in.ThemeMode != "dark" {
		h.writeError(w, errors.BadRequest("theme_mode must be light or dark"))
		return
	}
	h.writeJSON(w, http.StatusOK, h.store.UpdateSettings(in))
}

func (h *Handler) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.ResetSettings())
}

// --- error logs ---

func (h *Handler) handleReportError(w http.ResponseWriter, r *http.Request) {
	var in ErrorLogCreate
	if err := h.decodeJSON(w, r, &in); err != nil {
		return
	}
	if in.Message == "" {
		h.writeError(w, errors.BadRequest("message is required"))
		return
	}
	e := h.store.AppendError(in)
	h.log.WithField("app", e.AppName).WithField("type", e.Type).Warnf("client error reported: %s", e.Message)
	h.writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) handleListErrors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ErrorFilter{
		Type:      q.Get("type"),
		AppName:   q.Get("app_name"),
		Severity:  q.Get("severity"),
		Limit:     queryInt(q.Get("limit"), 100),
		Offset:    queryInt(q.Get("offset"), 0),
		StartTime: int64(queryInt(q.Get("start_time"), 0)),
		EndTime:   int64(queryInt(q.Get("end_time"), 0)),
	}
	if v := q.Get("resolved"); v != "" {
		resolved := v == "true"
		f.Resolved = &resolved
	}
	h.writeJSON(w, http.StatusOK, h.store.ListErrors(f))
}

func (h *Handler) handleErrorStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.ErrorStats())
}

func (h *Handler) handleExportErrors(w http.ResponseWriter, r *http.Request) {
	logs := h.store.ExportErrors()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=errors-%s.json", time.Now().UTC().Format("20060102-150405")))
	_ = json.NewEncoder(w).Encode(logs)
}

func (h *Handler) handleBulkResolve(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs []string `json:"ids"`
	}
	if err := h.decodeJSON(w, r, &in); err != nil {
		return
	}
	n := h.store.ResolveErrors(in.IDs)
	h.writeJSON(w, http.StatusOK, map[string]int{"resolved": n})
}

func (h *Handler) handleGetError(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.GetError(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, e)
}

func (h *Handler) handleUpdateError(w http.ResponseWriter, r *http.Request) {
	var in ErrorLogUpdate
	if err := h.decodeJSON(w, r, &in); err != nil {
		return
	}
	e, err := h.store.UpdateError(mux.Vars(r)["id"], in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, e)
}

func (h *Handler) handleDeleteError(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteError(mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "error log deleted"})
}

func (h *Handler) handleClearErrors(w http.ResponseWriter, r *http.Request) {
	n := h.store.ClearErrors()
	h.writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

// --- auth ---

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in LoginRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		return
	}
	user, err := h.auth.Authenticate(in.Email, in.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.auth.RememberRefresh(pair.RefreshToken, user.ID)
	h.log.WithField("email", user.Email).Info("user logged in")
	h.writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in RefreshRequest
	if err := h.decodeJSON(w, r, &in); err != nil {
		return
	}
	claims, err := h.tokens.ParseRefresh(in.RefreshToken)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !h.auth.RefreshValid(in.RefreshToken) {
		h.writeError(w, errors.Unauthorized("refresh token revoked"))
		return
	}
	user, ok := h.auth.GetByEmail(claims.Email)
	if !ok {
		h.writeError(w, errors.Unauthorized("unknown account"))
		return
	}

	// Rotation: the presented refresh token is spent.
	h.auth.RevokeRefresh(in.RefreshToken)
	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.auth.RememberRefresh(pair.RefreshToken, user.ID)
	h.writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request, claims *Claims) {
	h.auth.RevokeAllRefresh(claims.UserID)
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request, claims *Claims) {
	user, ok := h.auth.GetByEmail(claims.Email)
	if !ok {
		h.writeError(w, errors.Unauthorized("unknown account"))
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// requireAuth wraps a handler with bearer token verification.
func (h *Handler) requireAuth(next func(http.ResponseWriter, *http.Request, *Claims)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			h.writeError(w, errors.Unauthorized("missing bearer token"))
			return
		}
		claims, err := h.tokens.ParseAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			h.writeError(w, err)
			return
		}
		next(w, r, claims)
	}
}

// --- helpers ---

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Warn("encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	var svcErr *errors.ServiceError
	if stderrors.As(err, &svcErr) {
		status = svcErr.HTTPStatus
		message = svcErr.Message
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON parses the request body into v, writing the error response
// itself so callers just bail on failure.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.writeError(w, errors.BadRequest("invalid request body: "+err.Error()))
		return err
	}
	return nil
}

func pathInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(mux.Vars(r)[name])
	return n
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
