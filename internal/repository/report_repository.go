package repository

import (
	"context"
	"time"
)

// InvoiceSummaryFilter filters the sales invoice aggregation. Zero-valued
// fields are not applied.
type InvoiceSummaryFilter struct {
	Company   string
	CreatedBy string
	FromDate  time.Time
	ToDate    time.Time
}

// InvoiceSummary is the aggregate over matching invoices.
type InvoiceSummary struct {
	TotalCount  int
	TotalAmount float64
}

// CostCenterTotals carries income/expense totals for one cost center.
type CostCenterTotals struct {
	CostCenter string
	Income     float64
	Expense    float64
}

// ReportRepository defines the read-side aggregations.
type ReportRepository interface {
	// InvoiceSummary counts and sums invoices matching the filter
	InvoiceSummary(ctx context.Context, filter *InvoiceSummaryFilter) (*InvoiceSummary, error)
	// CostCenterTotals aggregates ledger entries per cost center of a company
	CostCenterTotals(ctx context.Context, companyName string) ([]*CostCenterTotals, error)
}
