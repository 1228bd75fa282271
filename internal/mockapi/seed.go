package mockapi

import (
	"fmt"
	"strings"
)

var (
	firstNames = []string{
		"Alice", "Bruno", "Carla", "Deepak", "Elena", "Felix", "Grace",
		"Hiro", "Ines", "Jonas", "Kira", "Leo", "Mara", "Noah", "Olga",
		"Pavel", "Quinn", "Rosa", "Sam", "Tara",
	}
	lastNames = []string{
		"Anders", "Baker", "Chen", "Dawson", "Eriksen", "Fuentes",
		"Gallo", "Huang", "Ivanov", "Jensen", "Kato", "Lindqvist",
		"Moreau", "Nakamura", "Okafor", "Petrov", "Quist", "Rivera",
		"Sato", "Tanaka",
	}
	userRoles = []string{"admin", "editor", "viewer"}

	rowCategories = []string{"Sales", "Marketing", "Engineering", "Support", "Finance", "Operations"}
	rowStatuses   = []string{"active", "pending", "completed", "archived"}
	rowAdjectives = []string{"Scalable", "Adaptive", "Integrated", "Streamlined", "Modular", "Resilient"}
	rowNouns      = []string{"Pipeline", "Initiative", "Rollout", "Campaign", "Migration", "Audit"}

	chartMonths  = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	chartDepts   = []string{"Sales", "Marketing", "Engineering", "Support", "Finance"}
	deviceLabels = []string{"Desktop", "Mobile", "Tablet", "Other"}
	deviceShares = []float64{45.2, 32.8, 15.3, 6.7}
)

func (s *Store) seedUsers(n int) {
	for i := 0; i < n; i++ {
		first := firstNames[s.rng.Intn(len(firstNames))]
		last := lastNames[s.rng.Intn(len(lastNames))]
		username := fmt.Sprintf("%s.%s%d", strings.ToLower(first), strings.ToLower(last), i+1)

		now := s.now().UTC()
		s.nextUserID++
		u := User{
			ID:        s.nextUserID,
			Email:     username + "@example.com",
			Username:  username,
			FullName:  first + " " + last,
			Role:      userRoles[s.rng.Intn(len(userRoles))],
			IsActive:  s.rng.Intn(10) != 0,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.users[u.ID] = u
	}
}

func (s *Store) seedRows(n int) {
	for i := 0; i < n; i++ {
		adj := rowAdjectives[s.rng.Intn(len(rowAdjectives))]
		noun := rowNouns[s.rng.Intn(len(rowNouns))]
		category := rowCategories[s.rng.Intn(len(rowCategories))]

		now := s.now().UTC()
		s.nextRowID++
		row := DataRow{
			ID:          s.nextRowID,
			Name:        fmt.Sprintf("%s %s #%d", adj, noun, i+1),
			Category:    category,
			Value:       float64(100+s.rng.Intn(9901)) + float64(s.rng.Intn(100))/100,
			Status:      rowStatuses[s.rng.Intn(len(rowStatuses))],
			Description: fmt.Sprintf("%s record for the %s team.", adj, strings.ToLower(category)),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.rows[row.ID] = row
	}
}

// generateAnalytics produces a fresh dashboard snapshot. Callers hold the
// write lock.
func (s *Store) generateAnalytics() AnalyticsData {
	metrics := []MetricCard{
		{Title: "Total Revenue", Value: fmt.Sprintf("$%d,%03d", 40+s.rng.Intn(60), s.rng.Intn(1000)), Change: round1(s.rng.Float64()*30 - 5), Icon: "revenue"},
		{Title: "Active Users", Value: fmt.Sprintf("%d,%03d", 1+s.rng.Intn(9), s.rng.Intn(1000)), Change: round1(s.rng.Float64()*20 - 5), Icon: "users"},
		{Title: "Conversion Rate", Value: fmt.Sprintf("%.1f%%", 1+s.rng.Float64()*4), Change: round1(s.rng.Float64()*10 - 5), Icon: "conversion"},
		{Title: "Avg. Session", Value: fmt.Sprintf("%dm %ds", 2+s.rng.Intn(8), s.rng.Intn(60)), Change: round1(s.rng.Float64()*10 - 5), Icon: "session"},
	}
	for i := range metrics {
		if metrics[i].Change >= 0 {
			metrics[i].Trend = "up"
		} else {
			metrics[i].Trend = "down"
		}
	}

	line := Chart{Labels: append([]string(nil), chartMonths...)}
	for _, series := range []struct{ label, border, background string }{
		{"Revenue", "#61dafb", "rgba(97, 218, 251, 0.2)"},
		{"Expenses", "#ff6b6b", "rgba(255, 107, 107, 0.2)"},
	} {
		data := make([]int, len(chartMonths))
		for i := range data {
			data[i] = 20000 + s.rng.Intn(40000)
		}
		line.Datasets = append(line.Datasets, ChartDataset{
			Label:           series.label,
			Data:            data,
			BorderColor:     series.border,
			BackgroundColor: series.background,
		})
	}

	bar := Chart{Labels: append([]string(nil), chartDepts...)}
	for _, series := range []struct{ label, background string }{
		{"Q4", "rgba(97, 218, 251, 0.8)"},
		{"Q3", "rgba(255, 107, 107, 0.8)"},
	} {
		data := make([]int, len(chartDepts))
		for i := range data {
			data[i] = 50 + s.rng.Intn(150)
		}
		bar.Datasets = append(bar.Datasets, ChartDataset{
			Label:           series.label,
			Data:            data,
			BackgroundColor: series.background,
		})
	}

	return AnalyticsData{
		Metrics:   metrics,
		LineChart: line,
		BarChart:  bar,
		PieChart: PieChart{
			Labels: append([]string(nil), deviceLabels...),
			Data:   append([]float64(nil), deviceShares...),
		},
	}
}

func round1(v float64) float64 {
	return float64(int(v*10)) / 10
}
