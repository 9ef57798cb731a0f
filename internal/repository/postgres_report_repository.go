package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresReportRepository implements ReportRepository using PostgreSQL
type PostgresReportRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReportRepository creates a new PostgresReportRepository
func NewPostgresReportRepository(pool *pgxpool.Pool) *PostgresReportRepository {
	return &PostgresReportRepository{pool: pool}
}

// InvoiceSummary counts and sums invoices matching the filter
func (r *PostgresReportRepository) InvoiceSummary(ctx context.Context, filter *InvoiceSummaryFilter) (*InvoiceSummary, error) {
	whereClause := "WHERE company_name = $1"
	args := []interface{}{filter.Company}
	argIndex := 2

	if filter.CreatedBy != "" {
		whereClause += fmt.Sprintf(" AND created_by = $%d", argIndex)
		args = append(args, filter.CreatedBy)
		argIndex++
	}
	if !filter.FromDate.IsZero() {
		whereClause += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, filter.FromDate)
		argIndex++
	}
	if !filter.ToDate.IsZero() {
		whereClause += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, filter.ToDate)
		argIndex++
	}

	query := fmt.Sprintf(
		`SELECT COUNT(*), COALESCE(SUM(grand_total), 0) FROM sales_invoices %s`,
		whereClause,
	)

	summary := &InvoiceSummary{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(&summary.TotalCount, &summary.TotalAmount)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return summary, nil
}

// CostCenterTotals aggregates ledger entries per cost center of a company
func (r *PostgresReportRepository) CostCenterTotals(ctx context.Context, companyName string) ([]*CostCenterTotals, error) {
	query := `
		SELECT cost_center,
		       COALESCE(SUM(amount) FILTER (WHERE account_type = 'Income'), 0) AS income,
		       COALESCE(SUM(amount) FILTER (WHERE account_type = 'Expense'), 0) AS expense
		FROM gl_entries
		WHERE company_name = $1
		GROUP BY cost_center
		ORDER BY cost_center
	`
	rows, err := r.pool.Query(ctx, query, companyName)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	totals := make([]*CostCenterTotals, 0)
	for rows.Next() {
		t := &CostCenterTotals{}
		if err := rows.Scan(&t.CostCenter, &t.Income, &t.Expense); err != nil {
			return nil, mapPostgresError(err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
