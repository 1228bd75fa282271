// Package mockapi implements the mock data service the remotes talk to:
// users, data rows, analytics, settings, error logs and demo auth, all
// backed by an explicitly constructed in-memory store.
package mockapi

import "time"

// User is a directory entry managed by the user management remote.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserCreate is the creation payload for a user.
type UserCreate struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// DataRow is one record in the data grid remote.
type DataRow struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Value       float64   `json:"value"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DataRowCreate is the creation payload for a data row.
type DataRowCreate struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Value       float64 `json:"value"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
}

// DataRowUpdate is a partial update; nil fields are left untouched.
type DataRowUpdate struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Value       *float64 `json:"value"`
	Status      *string  `json:"status"`
	Description *string  `json:"description"`
}

// DataFilter narrows and paginates data row listings.
type DataFilter struct {
	Category string
	Status   string
	Skip     int
	Limit    int
}

// Settings is the settings remote's configuration object.
type Settings struct {
	ID                   int    `json:"id"`
	ThemeMode            string `json:"theme_mode"`
	PrimaryColor         string `json:"primary_color"`
	SecondaryColor       string `json:"secondary_color"`
	Language             string `json:"language"`
	Timezone             string `json:"timezone"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	EmailNotifications   bool   `json:"email_notifications"`
	PushNotifications    bool   `json:"push_notifications"`
	AutoSave             bool   `json:"auto_save"`
	CompactMode          bool   `json:"compact_mode"`
}

// SettingsUpdate is a partial update; nil fields are left untouched.
type SettingsUpdate struct {
	ThemeMode            *string `json:"theme_mode"`
	PrimaryColor         *string `json:"primary_color"`
	SecondaryColor       *string `json:"secondary_color"`
	Language             *string `json:"language"`
	Timezone             *string `json:"timezone"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	EmailNotifications   *bool   `json:"email_notifications"`
	PushNotifications    *bool   `json:"push_notifications"`
	AutoSave             *bool   `json:"auto_save"`
	CompactMode          *bool   `json:"compact_mode"`
}

// MetricCard is one headline figure on the analytics dashboard.
type MetricCard struct {
	Title  string  `json:"title"`
	Value  string  `json:"value"`
	Change float64 `json:"change"`
	Trend  string  `json:"trend"`
	Icon   string  `json:"icon"`
}

// ChartDataset is one series in a line or bar chart.
type ChartDataset struct {
	Label           string `json:"label"`
	Data            []int  `json:"data"`
	BorderColor     string `json:"borderColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Chart is a labeled multi-series chart.
type Chart struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// PieChart is a single-series share breakdown.
type PieChart struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// AnalyticsData is the full dashboard payload. Field names follow the
// shape the analytics remote consumes.
type AnalyticsData struct {
	Metrics   []MetricCard `json:"metrics"`
	LineChart Chart        `json:"lineChart"`
	BarChart  Chart        `json:"barChart"`
	PieChart  PieChart     `json:"pieChart"`
}

// ErrorLog is a client-reported error from one of the remotes. Field
// casing mirrors what the error reporter in the shell sends.
type ErrorLog struct {
	ID             string                 `json:"id"`
	Timestamp      int64                  `json:"timestamp"`
	Type           string                 `json:"type"` // render | api | network | moduleFederation | unknown
	Message        string                 `json:"message"`
	Stack          string                 `json:"stack,omitempty"`
	AppName        string                 `json:"appName"`
	URL            string                 `json:"url"`
	UserAgent      string                 `json:"userAgent"`
	ComponentStack string                 `json:"componentStack,omitempty"`
	Props          map[string]interface{} `json:"props,omitempty"`
	Severity       string                 `json:"severity"` // low | medium | high | critical
	CreatedAt      time.Time              `json:"created_at"`
	Resolved       bool                   `json:"resolved"`
}

// ErrorLogCreate is the intake payload for an error report.
type ErrorLogCreate struct {
	Timestamp      int64                  `json:"timestamp"`
	Type           string                 `json:"type"`
	Message        string                 `json:"message"`
	Stack          string                 `json:"stack"`
	AppName        string                 `json:"appName"`
	URL            string                 `json:"url"`
	UserAgent      string                 `json:"userAgent"`
	ComponentStack string                 `json:"componentStack"`
	Props          map[string]interface{} `json:"props"`
	Severity       string                 `json:"severity"`
}

// ErrorLogUpdate is a partial update; nil fields are left untouched.
type ErrorLogUpdate struct {
	Message  *string `json:"message"`
	Severity *string `json:"severity"`
	Resolved *bool   `json:"resolved"`
}

// ErrorFilter narrows error log listings.
type ErrorFilter struct {
	Type      string
	AppName   string
	Severity  string
	Resolved  *bool
	Limit     int
	Offset    int
	StartTime int64
	EndTime   int64
}

// ErrorStats summarizes the error log.
type ErrorStats struct {
	Total      int            `json:"total"`
	ByType     map[string]int `json:"by_type"`
	ByApp      map[string]int `json:"by_app"`
	BySeverity map[string]int `json:"by_severity"`
	Recent     int            `json:"recent"` // errors in the last 5 minutes
	Resolved   int            `json:"resolved"`
	Unresolved int            `json:"unresolved"`
}
