package mockapi

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MFE-Works/shell_layer/internal/errors"
)

// maxErrorLogs bounds the in-memory error log.
const maxErrorLogs = 1000

// Store holds all mock API state behind a single mutex. State is created
// explicitly at construction, reads return copies and nothing escapes the
// lock, so handlers can share one instance freely.
type Store struct {
	mu sync.RWMutex

	rng *rand.Rand
	now func() time.Time

	users      map[int]User
	nextUserID int

	rows      map[int]DataRow
	nextRowID int

	settings         Settings
	settingsDefaults Settings

	analytics AnalyticsData

	errorLogs []ErrorLog
}

// StoreOptions controls how a Store is seeded.
type StoreOptions struct {
	Users int   // seeded user count, default 50
	Rows  int   // seeded data row count, default 100
	Seed  int64 // rng seed, default 1 for reproducibility
	Now   func() time.Time
}

// NewStore creates a fully seeded store.
func NewStore(opts StoreOptions) *Store {
	if opts.Users <= 0 {
		opts.Users = 50
	}
	if opts.Rows <= 0 {
		opts.Rows = 100
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		rng:   rand.New(rand.NewSource(opts.Seed)),
		now:   opts.Now,
		users: make(map[int]User),
		rows:  make(map[int]DataRow),
	}
	s.settingsDefaults = defaultSettings()
	s.settings = s.settingsDefaults
	s.seedUsers(opts.Users)
	s.seedRows(opts.Rows)
	s.analytics = s.generateAnalytics()
	return s
}

// --- users ---

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(id int) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, errors.NotFound("user")
	}
	return u, nil
}

// CreateUser adds a new user and returns it.
func (s *Store) CreateUser(in UserCreate) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.nextUserID++
	u := User{
		ID:        s.nextUserID,
		Email:     in.Email,
		Username:  in.Username,
		FullName:  in.FullName,
		Role:      in.Role,
		IsActive:  in.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[u.ID] = u
	return u
}

// UpdateUser applies the non-nil fields of the update.
func (s *Store) UpdateUser(id int, in UserUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, errors.NotFound("user")
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.FullName != nil {
		u.FullName = *in.FullName
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	u.UpdatedAt = s.now().UTC()
	s.users[id] = u
	return u, nil
}

// DeleteUser removes the user with the given id.
func (s *Store) DeleteUser(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return errors.NotFound("user")
	}
	delete(s.users, id)
	return nil
}

// --- data rows ---

// ListRows returns rows matching the filter, ordered by id, windowed by
// Skip/Limit. A zero Limit defaults to 100; the ceiling is 1000.
func (s *Store) ListRows(f DataFilter) []DataRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 1000 {
		f.Limit = 1000
	}
	if f.Skip < 0 {
		f.Skip = 0
	}

	matched := make([]DataRow, 0, len(s.rows))
	for _, row := range s.rows {
		if f.Category != "" && row.Category != f.Category {
			continue
		}
		if f.Status != "" && row.Status != f.Status {
			continue
		}
		matched = append(matched, row)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if f.Skip >= len(matched) {
		return []DataRow{}
	}
	matched = matched[f.Skip:]
	if len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched
}

// GetRow returns the data row with the given id.
func (s *Store) GetRow(id int) (DataRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return DataRow{}, errors.NotFound("data row")
	}
	return row, nil
}

// CreateRow adds a new data row and returns it.
func (s *Store) CreateRow(in DataRowCreate) DataRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.nextRowID++
	row := DataRow{
		ID:          s.nextRowID,
		Name:        in.Name,
		Category:    in.Category,
		Value:       in.Value,
		Status:      in.Status,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.rows[row.ID] = row
	return row
}

// UpdateRow applies the non-nil fields of the update.
func (s *Store) UpdateRow(id int, in DataRowUpdate) (DataRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return DataRow{}, errors.NotFound("data row")
	}
	if in.Name != nil {
		row.Name = *in.Name
	}
	if in.Category != nil {
		row.Category = *in.Category
	}
	if in.Value != nil {
		row.Value = *in.Value
	}
	if in.Status != nil {
		row.Status = *in.Status
	}
	if in.Description != nil {
		row.Description = *in.Description
	}
	row.UpdatedAt = s.now().UTC()
	s.rows[id] = row
	return row, nil
}

// DeleteRow removes the data row with the given id.
func (s *Store) DeleteRow(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return errors.NotFound("data row")
	}
	delete(s.rows, id)
	return nil
}

// --- settings ---

// GetSettings returns the current settings.
func (s *Store) GetSettings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings merges the non-nil fields of the update into the current
// settings and returns the result.
func (s *Store) UpdateSettings(in SettingsUpdate) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ThemeMode != nil {
		s.settings.ThemeMode = *in.ThemeMode
	}
	if in.PrimaryColor != nil {
		s.settings.PrimaryColor = *in.PrimaryColor
	}
	if in.SecondaryColor != nil {
		s.settings.SecondaryColor = *in.SecondaryColor
	}
	if in.Language != nil {
		s.settings.Language = *in.Language
	}
	if in.Timezone != nil {
		s.settings.Timezone = *in.Timezone
	}
	if in.NotificationsEnabled != nil {
		s.settings.NotificationsEnabled = *in.NotificationsEnabled
	}
	if in.EmailNotifications != nil {
		s.settings.EmailNotifications = *in.EmailNotifications
	}
	if in.PushNotifications != nil {
		s.settings.PushNotifications = *in.PushNotifications
	}
	if in.AutoSave != nil {
		s.settings.AutoSave = *in.AutoSave
	}
	if in.CompactMode != nil {
		s.settings.CompactMode = *in.CompactMode
	}
	return s.settings
}

// ResetSettings restores the defaults and returns them.
func (s *Store) ResetSettings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = s.settingsDefaults
	return s.settings
}

// --- analytics ---

// Analytics returns the current dashboard snapshot.
func (s *Store) Analytics() AnalyticsData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAnalytics(s.analytics)
}

// RefreshAnalytics regenerates the dashboard snapshot.
func (s *Store) RefreshAnalytics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analytics = s.generateAnalytics()
}

// --- error logs ---

// AppendError stores a new error report, evicting the oldest entry when
// the log is full.
func (s *Store) AppendError(in ErrorLogCreate) ErrorLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if in.Timestamp == 0 {
		in.Timestamp = now.UnixMilli()
	}
	if in.Type == "" {
		in.Type = "unknown"
	}
	if in.Severity == "" {
		in.Severity = "medium"
	}
	e := ErrorLog{
		ID:             uuid.NewString(),
		Timestamp:      in.Timestamp,
		Type:           in.Type,
		Message:        in.Message,
		Stack:          in.Stack,
		AppName:        in.AppName,
		URL:            in.URL,
		UserAgent:      in.UserAgent,
		ComponentStack: in.ComponentStack,
		Props:          in.Props,
		Severity:       in.Severity,
		CreatedAt:      now,
	}
	s.errorLogs = append(s.errorLogs, e)
	if len(s.errorLogs) > maxErrorLogs {
		s.errorLogs = s.errorLogs[len(s.errorLogs)-maxErrorLogs:]
	}
	return e
}

// ListErrors returns errors matching the filter, newest first.
func (s *Store) ListErrors(f ErrorFilter) []ErrorLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	matched := make([]ErrorLog, 0, len(s.errorLogs))
	for i := len(s.errorLogs) - 1; i >= 0; i-- {
		e := s.errorLogs[i]
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.AppName != "" && e.AppName != f.AppName {
			continue
		}
		if f.Severity != "" && e.Severity != f.Severity {
			continue
		}
		if f.Resolved != nil && e.Resolved != *f.Resolved {
			continue
		}
		if f.StartTime != 0 && e.Timestamp < f.StartTime {
			continue
		}
		if f.EndTime != 0 && e.Timestamp > f.EndTime {
			continue
		}
		matched = append(matched, e)
	}

	if f.Offset >= len(matched) {
		return []ErrorLog{}
	}
	matched = matched[f.Offset:]
	if len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched
}

// GetError returns the error log entry with the given id.
func (s *Store) GetError(id string) (ErrorLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.errorLogs {
		if e.ID == id {
			return e, nil
		}
	}
	return ErrorLog{}, errors.NotFound("error log")
}

// UpdateError applies the non-nil fields of the update.
func (s *Store) UpdateError(id string, in ErrorLogUpdate) (ErrorLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.errorLogs {
		if e.ID != id {
			continue
		}
		if in.Message != nil {
			e.Message = *in.Message
		}
		if in.Severity != nil {
			e.Severity = *in.Severity
		}
		if in.Resolved != nil {
			e.Resolved = *in.Resolved
		}
		s.errorLogs[i] = e
		return e, nil
	}
	return ErrorLog{}, errors.NotFound("error log")
}

// DeleteError removes the error log entry with the given id.
func (s *Store) DeleteError(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.errorLogs {
		if e.ID == id {
			s.errorLogs = append(s.errorLogs[:i], s.errorLogs[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("error log")
}

// ClearErrors drops every error log entry and returns how many were removed.
func (s *Store) ClearErrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.errorLogs)
	s.errorLogs = nil
	return n
}

// ResolveErrors marks the given entries resolved and returns how many
// were actually updated.
func (s *Store) ResolveErrors(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	n := 0
	for i, e := range s.errorLogs {
		if want[e.ID] && !e.Resolved {
			s.errorLogs[i].Resolved = true
			n++
		}
	}
	return n
}

// PruneResolvedBefore removes resolved entries older than the cutoff and
// returns how many were removed.
func (s *Store) PruneResolvedBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.errorLogs[:0]
	removed := 0
	for _, e := range s.errorLogs {
		if e.Resolved && e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.errorLogs = kept
	return removed
}

// ErrorStats summarizes the current error log.
func (s *Store) ErrorStats() ErrorStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ErrorStats{
		Total:      len(s.errorLogs),
		ByType:     make(map[string]int),
		ByApp:      make(map[string]int),
		BySeverity: make(map[string]int),
	}
	recentCutoff := s.now().UTC().Add(-5 * time.Minute)
	for _, e := range s.errorLogs {
		stats.ByType[e.Type]++
		if e.AppName != "" {
			stats.ByApp[e.AppName]++
		}
		stats.BySeverity[e.Severity]++
		if e.CreatedAt.After(recentCutoff) {
			stats.Recent++
		}
		if e.Resolved {
			stats.Resolved++
		} else {
			stats.Unresolved++
		}
	}
	return stats
}

// ExportErrors returns every entry, oldest first.
func (s *Store) ExportErrors() []ErrorLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ErrorLog, len(s.errorLogs))
	copy(out, s.errorLogs)
	return out
}

func defaultSettings() Settings {
	return Settings{
		ID:                   1,
		ThemeMode:            "light",
		PrimaryColor:         "#61dafb",
		SecondaryColor:       "#ff6b6b",
		Language:             "en",
		Timezone:             "UTC",
		NotificationsEnabled: true,
		EmailNotifications:   true,
		PushNotifications:    false,
		AutoSave:             true,
		CompactMode:          false,
	}
}

func cloneAnalytics(a AnalyticsData) AnalyticsData {
	out := a
	out.Metrics = append([]MetricCard(nil), a.Metrics...)
	out.LineChart = cloneChart(a.LineChart)
	out.BarChart = cloneChart(a.BarChart)
	out.PieChart.Labels = append([]string(nil), a.PieChart.Labels...)
	out.PieChart.Data = append([]float64(nil), a.PieChart.Data...)
	return out
}

func cloneChart(c Chart) Chart {
	out := Chart{Labels: append([]string(nil), c.Labels...)}
	for _, ds := range c.Datasets {
		ds.Data = append([]int(nil), ds.Data...)
		out.Datasets = append(out.Datasets, ds)
	}
	return out
}
