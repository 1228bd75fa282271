package mockapi

import (
	"testing"
	"time"
)

func newTestStore() *Store {
	return NewStore(StoreOptions{Users: 10, Rows: 30, Seed: 42})
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestSeededCounts(t *testing.T) {
	s := newTestStore()
	if got := len(s.ListUsers()); got != 10 {
		t.Fatalf("users = %d, want 10", got)
	}
	if got := len(s.ListRows(DataFilter{Limit: 1000})); got != 30 {
		t.Fatalf("rows = %d, want 30", got)
	}
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore()

	u := s.CreateUser(UserCreate{Email: "new@example.com", Username: "new", FullName: "New User", Role: "viewer", IsActive: true})
	if u.ID != 11 {
		t.Fatalf("new user id = %d", u.ID)
	}

	got, err := s.GetUser(u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "new@example.com" {
		t.Fatalf("email = %q", got.Email)
	}

	updated, err := s.UpdateUser(u.ID, UserUpdate{Role: strptr("admin")})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Role != "admin" || updated.Email != "new@example.com" {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}

	if err := s.DeleteUser(u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.GetUser(u.ID); err == nil {
		t.Fatal("deleted user still present")
	}
	if err := s.DeleteUser(u.ID); err == nil {
		t.Fatal("double delete should fail")
	}
}

func TestListRowsFilterAndPagination(t *testing.T) {
	s := NewStore(StoreOptions{Users: 1, Rows: 50, Seed: 7})

	all := s.ListRows(DataFilter{Limit: 1000})
	category := all[0].Category
	var expected int
	for _, row := range all {
		if row.Category == category {
			expected++
		}
	}

	filtered := s.ListRows(DataFilter{Category: category, Limit: 1000})
	if len(filtered) != expected {
		t.Fatalf("category filter returned %d rows, want %d", len(filtered), expected)
	}
	for _, row := range filtered {
		if row.Category != category {
			t.Fatalf("row %d has category %q", row.ID, row.Category)
		}
	}

	page := s.ListRows(DataFilter{Skip: 10, Limit: 5})
	if len(page) != 5 {
		t.Fatalf("page size = %d", len(page))
	}
	if page[0].ID != all[10].ID {
		t.Fatalf("page starts at id %d, want %d", page[0].ID, all[10].ID)
	}

	if got := s.ListRows(DataFilter{Skip: 1000}); len(got) != 0 {
		t.Fatalf("skip past end returned %d rows", len(got))
	}

	// Limit is clamped to 1000 and defaults when unset.
	if got := s.ListRows(DataFilter{Limit: 100000}); len(got) != 50 {
		t.Fatalf("clamped limit returned %d rows", len(got))
	}
	if got := s.ListRows(DataFilter{}); len(got) != 50 {
		t.Fatalf("default limit returned %d rows", len(got))
	}
}

func TestSettingsPartialUpdateAndReset(t *testing.T) {
	s := newTestStore()

	before := s.GetSettings()
	if before.ThemeMode != "light" {
		t.Fatalf("default theme = %q", before.ThemeMode)
	}

	after := s.UpdateSettings(SettingsUpdate{ThemeMode: strptr("dark"), CompactMode: boolptr(true)})
	if after.ThemeMode != "dark" || !after.CompactMode {
		t.Fatalf("update not applied: %+v", after)
	}
	if after.PrimaryColor != before.PrimaryColor || after.Language != before.Language {
		t.Fatalf("untouched fields changed: %+v", after)
	}

	reset := s.ResetSettings()
	if reset != before {
		t.Fatalf("reset = %+v, want original defaults %+v", reset, before)
	}
}

func TestErrorLogLifecycle(t *testing.T) {
	s := newTestStore()

	e := s.AppendError(ErrorLogCreate{Message: "render exploded", AppName: "userApp", Type: "render", Severity: "high"})
	if e.ID == "" || e.Timestamp == 0 {
		t.Fatalf("append did not fill defaults: %+v", e)
	}
	s.AppendError(ErrorLogCreate{Message: "fetch failed", AppName: "dataApp", Type: "network"})

	byApp := s.ListErrors(ErrorFilter{AppName: "userApp"})
	if len(byApp) != 1 || byApp[0].Message != "render exploded" {
		t.Fatalf("app filter = %+v", byApp)
	}

	updated, err := s.UpdateError(e.ID, ErrorLogUpdate{Resolved: boolptr(true)})
	if err != nil || !updated.Resolved {
		t.Fatalf("UpdateError: %v %+v", err, updated)
	}

	stats := s.ErrorStats()
	if stats.Total != 2 || stats.Resolved != 1 || stats.Unresolved != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ByType["render"] != 1 || stats.ByApp["dataApp"] != 1 {
		t.Fatalf("stats breakdown = %+v", stats)
	}

	if err := s.DeleteError(e.ID); err != nil {
		t.Fatalf("DeleteError: %v", err)
	}
	if _, err := s.GetError(e.ID); err == nil {
		t.Fatal("deleted entry still present")
	}

	if n := s.ClearErrors(); n != 1 {
		t.Fatalf("cleared %d, want 1", n)
	}
}

func TestErrorLogCapped(t *testing.T) {
	s := newTestStore()
	for i := 0; i < maxErrorLogs+25; i++ {
		s.AppendError(ErrorLogCreate{Message: "overflow"})
	}
	if got := s.ErrorStats().Total; got != maxErrorLogs {
		t.Fatalf("log holds %d entries, want cap %d", got, maxErrorLogs)
	}
}

func TestResolveAndPrune(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(StoreOptions{Users: 1, Rows: 1, Seed: 1, Now: func() time.Time { return now }})

	a := s.AppendError(ErrorLogCreate{Message: "one"})
	b := s.AppendError(ErrorLogCreate{Message: "two"})

	if n := s.ResolveErrors([]string{a.ID, b.ID, "ghost"}); n != 2 {
		t.Fatalf("resolved %d, want 2", n)
	}
	if n := s.ResolveErrors([]string{a.ID}); n != 0 {
		t.Fatalf("re-resolve counted %d", n)
	}

	if n := s.PruneResolvedBefore(now.Add(time.Hour)); n != 2 {
		t.Fatalf("pruned %d, want 2", n)
	}
	if s.ErrorStats().Total != 0 {
		t.Fatal("pruned entries still present")
	}
}

func TestAnalyticsShape(t *testing.T) {
	s := newTestStore()
	a := s.Analytics()

	if len(a.Metrics) != 4 {
		t.Fatalf("metrics = %d, want 4", len(a.Metrics))
	}
	for _, m := range a.Metrics {
		if m.Trend != "up" && m.Trend != "down" {
			t.Fatalf("metric %q has trend %q", m.Title, m.Trend)
		}
	}
	if len(a.LineChart.Labels) != 6 || len(a.LineChart.Datasets) != 2 {
		t.Fatalf("line chart shape: %d labels, %d datasets", len(a.LineChart.Labels), len(a.LineChart.Datasets))
	}
	if len(a.BarChart.Labels) != 5 {
		t.Fatalf("bar chart labels = %d", len(a.BarChart.Labels))
	}
	if len(a.PieChart.Labels) != 4 || len(a.PieChart.Data) != 4 {
		t.Fatalf("pie chart shape: %v %v", a.PieChart.Labels, a.PieChart.Data)
	}

	// Refresh produces a new snapshot without changing the shape.
	s.RefreshAnalytics()
	b := s.Analytics()
	if len(b.Metrics) != 4 || len(b.LineChart.Datasets) != 2 {
		t.Fatalf("refreshed snapshot malformed: %+v", b)
	}
}
