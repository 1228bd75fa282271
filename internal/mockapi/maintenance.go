package mockapi

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MFE-Works/shell_layer/pkg/logger"
)

// Maintenance runs the periodic background jobs of the mock API: the
// analytics snapshot refresh and pruning of stale resolved error logs.
// It implements system.Service.
type Maintenance struct {
	cron  *cron.Cron
	store *Store
	log   *logger.Logger
}

// NewMaintenance creates the job runner. Jobs are scheduled but not
// started until Start.
func NewMaintenance(store *Store, log *logger.Logger) (*Maintenance, error) {
	if log == nil {
		log = logger.NewDefault("maintenance")
	}
	m := &Maintenance{
		cron:  cron.New(),
		store: store,
		log:   log,
	}

	if _, err := m.cron.AddFunc("@every 1m", m.refreshAnalytics); err != nil {
		return nil, err
	}
	if _, err := m.cron.AddFunc("@every 10m", m.pruneErrors); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Maintenance) refreshAnalytics() {
	m.store.RefreshAnalytics()
	m.log.Debug("analytics snapshot refreshed")
}

func (m *Maintenance) pruneErrors() {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	if n := m.store.PruneResolvedBefore(cutoff); n > 0 {
		m.log.Infof("pruned %d resolved error logs", n)
	}
}

// Name implements system.Service.
func (m *Maintenance) Name() string { return "mockapi-maintenance" }

// Start begins the schedule.
func (m *Maintenance) Start(_ context.Context) error {
	m.cron.Start()
	return nil
}

// Stop halts the schedule and waits for running jobs.
func (m *Maintenance) Stop(ctx context.Context) error {
	stopped := m.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
