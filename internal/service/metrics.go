package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/draftpos/HavanoCompany/pkg/telemetry"
)

// ProvisionMetrics holds the provisioning workflow counters. A nil
// receiver is valid and records nothing, so tests can pass nil.
type ProvisionMetrics struct {
	attempts  *telemetry.Counter
	conflicts *telemetry.Counter
	runs      *telemetry.Counter
}

// NewProvisionMetrics registers the provisioning counters.
func NewProvisionMetrics() (*ProvisionMetrics, error) {
	attempts, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "provision_company_create_attempts_total",
		Description: "Company creation attempts, including retries",
		Unit:        "{attempt}",
	})
	if err != nil {
		return nil, err
	}
	conflicts, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "provision_company_create_conflicts_total",
		Description: "Transient storage conflicts during company creation",
		Unit:        "{conflict}",
	})
	if err != nil {
		return nil, err
	}
	runs, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "provision_runs_total",
		Description: "Completed provisioning runs by status",
		Unit:        "{run}",
	})
	if err != nil {
		return nil, err
	}
	return &ProvisionMetrics{attempts: attempts, conflicts: conflicts, runs: runs}, nil
}

// Attempt records one company creation attempt.
func (m *ProvisionMetrics) Attempt(ctx context.Context) {
	if m == nil {
		return
	}
	m.attempts.Inc(ctx)
}

// Conflict records one transient conflict during company creation.
func (m *ProvisionMetrics) Conflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.conflicts.Inc(ctx)
}

// Provisioned records one finished provisioning run.
func (m *ProvisionMetrics) Provisioned(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.runs.Inc(ctx, attribute.String("status", status))
}
