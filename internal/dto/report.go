package dto

// InvoiceSummaryRequest filters the sales invoice summary.
type InvoiceSummaryRequest struct {
	Company   string `json:"company" binding:"required,max=255"`
	CreatedBy string `json:"created_by" binding:"omitempty,email"`
	FromDate  string `json:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate    string `json:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// InvoiceSummaryResponse aggregates matching invoices.
type InvoiceSummaryResponse struct {
	TotalCount  int     `json:"total_count"`
	TotalAmount float64 `json:"total_amount"`
}

// CostCenterPL is the profit-and-loss rollup for one cost center.
type CostCenterPL struct {
	CostCenter string  `json:"cost_center"`
	Income     float64 `json:"income"`
	Expense    float64 `json:"expense"`
	Net        float64 `json:"net"`
}

// ProfitAndLossResponse rolls up income/expense per cost center of a company.
type ProfitAndLossResponse struct {
	Company      string         `json:"company"`
	CostCenters  []CostCenterPL `json:"cost_centers"`
	TotalIncome  float64        `json:"total_income"`
	TotalExpense float64        `json:"total_expense"`
	TotalNet     float64        `json:"total_net"`
}
