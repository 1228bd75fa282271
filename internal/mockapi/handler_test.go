package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MFE-Works/shell_layer/pkg/logger"
)

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	store := NewStore(StoreOptions{Users: 5, Rows: 20, Seed: 42})
	tokens := NewTokenIssuer("test-secret", "test-refresh-secret", 15*time.Minute, 7*24*time.Hour)
	_, handler := NewHandler(store, NewAuthStore(), tokens, logger.NewDefault("mockapi-test"))
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, url, err)
		}
	}
	return resp
}

func TestHealthAndRoot(t *testing.T) {
	srv, _ := newTestServer(t)

	var health map[string]string
	resp := doJSON(t, "GET", srv.URL+"/health", nil, &health)
	if resp.StatusCode != http.StatusOK || health["status"] != "healthy" {
		t.Fatalf("health = %d %v", resp.StatusCode, health)
	}

	var info map[string]interface{}
	if resp := doJSON(t, "GET", srv.URL+"/", nil, &info); resp.StatusCode != http.StatusOK {
		t.Fatalf("root status = %d", resp.StatusCode)
	}
}

func TestUserEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var users []User
	doJSON(t, "GET", srv.URL+"/api/users", nil, &users)
	if len(users) != 5 {
		t.Fatalf("listed %d users", len(users))
	}

	var created User
	resp := doJSON(t, "POST", srv.URL+"/api/users", UserCreate{
		Email: "probe@example.com", Username: "probe", FullName: "Probe", Role: "viewer", IsActive: true,
	}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	var fetched User
	doJSON(t, "GET", fmt.Sprintf("%s/api/users/%d", srv.URL, created.ID), nil, &fetched)
	if fetched.Email != "probe@example.com" {
		t.Fatalf("fetched %+v", fetched)
	}

	var updated User
	doJSON(t, "PUT", fmt.Sprintf("%s/api/users/%d", srv.URL, created.ID), UserUpdate{Role: strptr("admin")}, &updated)
	if updated.Role != "admin" || updated.Username != "probe" {
		t.Fatalf("updated %+v", updated)
	}

	if resp := doJSON(t, "DELETE", fmt.Sprintf("%s/api/users/%d", srv.URL, created.ID), nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if resp := doJSON(t, "GET", fmt.Sprintf("%s/api/users/%d", srv.URL, created.ID), nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", resp.StatusCode)
	}
}

func TestUserValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	if resp := doJSON(t, "POST", srv.URL+"/api/users", UserCreate{FullName: "No Email"}, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing email accepted: %d", resp.StatusCode)
	}
	if resp := doJSON(t, "POST", srv.URL+"/api/users", map[string]string{"unexpected": "field"}, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field accepted: %d", resp.StatusCode)
	}
}

func TestDataEndpointsWithFilters(t *testing.T) {
	srv, store := newTestServer(t)

	all := store.ListRows(DataFilter{Limit: 1000})
	category := all[0].Category

	var filtered []DataRow
	doJSON(t, "GET", srv.URL+"/api/data?category="+category+"&limit=1000", nil, &filtered)
	for _, row := range filtered {
		if row.Category != category {
			t.Fatalf("filter leaked category %q", row.Category)
		}
	}

	var page []DataRow
	doJSON(t, "GET", srv.URL+"/api/data?skip=5&limit=3", nil, &page)
	if len(page) != 3 || page[0].ID != all[5].ID {
		t.Fatalf("pagination off: got %d rows starting at %d", len(page), page[0].ID)
	}

	if resp := doJSON(t, "GET", srv.URL+"/api/data/999999", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing row = %d, want 404", resp.StatusCode)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var current Settings
	doJSON(t, "GET", srv.URL+"/api/settings", nil, &current)
	if current.ThemeMode != "light" {
		t.Fatalf("default theme = %q", current.ThemeMode)
	}

	var updated Settings
	resp := doJSON(t, "PUT", srv.URL+"/api/settings", SettingsUpdate{ThemeMode: strptr("dark")}, &updated)
	if resp.StatusCode != http.StatusOK || updated.ThemeMode != "dark" {
		t.Fatalf("update = %d %+v", resp.StatusCode, updated)
	}
	if updated.PrimaryColor != current.PrimaryColor {
		t.Fatalf("partial update clobbered primary color: %+v", updated)
	}

	if resp := doJSON(t, "PUT", srv.URL+"/api/settings", SettingsUpdate{ThemeMode: strptr("neon")}, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid theme accepted: %d", resp.StatusCode)
	}

	var reset Settings
	doJSON(t, "POST", srv.URL+"/api/settings/reset", nil, &reset)
	if reset.ThemeMode != "light" {
		t.Fatalf("reset theme = %q", reset.ThemeMode)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var dashboard AnalyticsData
	doJSON(t, "GET", srv.URL+"/api/analytics", nil, &dashboard)
	if len(dashboard.Metrics) != 4 {
		t.Fatalf("dashboard metrics = %d", len(dashboard.Metrics))
	}

	var line Chart
	doJSON(t, "GET", srv.URL+"/api/analytics/charts/line", nil, &line)
	if len(line.Datasets) != 2 {
		t.Fatalf("line datasets = %d", len(line.Datasets))
	}

	var pie PieChart
	doJSON(t, "GET", srv.URL+"/api/analytics/charts/pie", nil, &pie)
	if len(pie.Data) != 4 {
		t.Fatalf("pie data = %v", pie.Data)
	}
}

func TestErrorEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var created ErrorLog
	resp := doJSON(t, "POST", srv.URL+"/api/errors", ErrorLogCreate{
		Message: "widget exploded", AppName: "userApp", Type: "render", Severity: "high",
	}, &created)
	if resp.StatusCode != http.StatusCreated || created.ID == "" {
		t.Fatalf("report = %d %+v", resp.StatusCode, created)
	}

	doJSON(t, "POST", srv.URL+"/api/errors", ErrorLogCreate{Message: "fetch failed", AppName: "dataApp", Type: "network"}, nil)

	var listed []ErrorLog
	doJSON(t, "GET", srv.URL+"/api/errors?app_name=userApp", nil, &listed)
	if len(listed) != 1 || listed[0].Message != "widget exploded" {
		t.Fatalf("filtered list = %+v", listed)
	}

	var stats ErrorStats
	doJSON(t, "GET", srv.URL+"/api/errors/stats", nil, &stats)
	if stats.Total != 2 || stats.ByType["render"] != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	var patched ErrorLog
	doJSON(t, "PATCH", srv.URL+"/api/errors/"+created.ID, ErrorLogUpdate{Resolved: boolptr(true)}, &patched)
	if !patched.Resolved {
		t.Fatalf("patch did not resolve: %+v", patched)
	}

	var bulk map[string]int
	doJSON(t, "POST", srv.URL+"/api/errors/bulk-resolve", map[string][]string{"ids": {created.ID}}, &bulk)
	if bulk["resolved"] != 0 {
		t.Fatalf("already-resolved entry counted again: %v", bulk)
	}

	var exported []ErrorLog
	doJSON(t, "GET", srv.URL+"/api/errors/export/json", nil, &exported)
	if len(exported) != 2 {
		t.Fatalf("export = %d entries", len(exported))
	}

	if resp := doJSON(t, "DELETE", srv.URL+"/api/errors/"+created.ID, nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete = %d", resp.StatusCode)
	}
	var cleared map[string]int
	doJSON(t, "DELETE", srv.URL+"/api/errors", nil, &cleared)
	if cleared["cleared"] != 1 {
		t.Fatalf("cleared = %v", cleared)
	}

	if resp := doJSON(t, "POST", srv.URL+"/api/errors", ErrorLogCreate{}, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty report accepted: %d", resp.StatusCode)
	}
}

func TestAuthFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	// Wrong password.
	if resp := doJSON(t, "POST", srv.URL+"/api/auth/login", LoginRequest{Email: "admin@example.com", Password: "wrong"}, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login = %d, want 401", resp.StatusCode)
	}

	var pair TokenResponse
	resp := doJSON(t, "POST", srv.URL+"/api/auth/login", LoginRequest{Email: "admin@example.com", Password: "admin123"}, &pair)
	if resp.StatusCode != http.StatusOK || pair.AccessToken == "" || pair.TokenType != "bearer" {
		t.Fatalf("login = %d %+v", resp.StatusCode, pair)
	}

	// /auth/me with the access token.
	req, _ := http.NewRequest("GET", srv.URL+"/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	meResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer meResp.Body.Close()
	var me AuthUser
	if err := json.NewDecoder(meResp.Body).Decode(&me); err != nil {
		t.Fatal(err)
	}
	if me.Email != "admin@example.com" || me.Role != "admin" {
		t.Fatalf("me = %+v", me)
	}

	// Missing and garbage tokens are rejected.
	if resp := doJSON(t, "GET", srv.URL+"/api/auth/me", nil, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated me = %d", resp.StatusCode)
	}

	// Refresh rotates: the old refresh token is spent.
	var rotated TokenResponse
	if resp := doJSON(t, "POST", srv.URL+"/api/auth/refresh", RefreshRequest{RefreshToken: pair.RefreshToken}, &rotated); resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh = %d", resp.StatusCode)
	}
	if resp := doJSON(t, "POST", srv.URL+"/api/auth/refresh", RefreshRequest{RefreshToken: pair.RefreshToken}, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("spent refresh token accepted: %d", resp.StatusCode)
	}

	// Logout revokes the rotated refresh token too.
	logoutReq, _ := http.NewRequest("POST", srv.URL+"/api/auth/logout", bytes.NewReader(nil))
	logoutReq.Header.Set("Authorization", "Bearer "+rotated.AccessToken)
	logoutResp, err := http.DefaultClient.Do(logoutReq)
	if err != nil {
		t.Fatal(err)
	}
	logoutResp.Body.Close()
	if logoutResp.StatusCode != http.StatusOK {
		t.Fatalf("logout = %d", logoutResp.StatusCode)
	}
	if resp := doJSON(t, "POST", srv.URL+"/api/auth/refresh", RefreshRequest{RefreshToken: rotated.RefreshToken}, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after logout accepted: %d", resp.StatusCode)
	}

	// An access token cannot stand in for a refresh token.
	if resp := doJSON(t, "POST", srv.URL+"/api/auth/refresh", RefreshRequest{RefreshToken: pair.AccessToken}, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("access token accepted as refresh: %d", resp.StatusCode)
	}
}
