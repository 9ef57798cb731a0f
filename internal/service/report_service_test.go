package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/draftpos/HavanoCompany/internal/dto"
	"github.com/draftpos/HavanoCompany/internal/repository"
)

func reportFixture(t *testing.T) (*provisionFixture, *MockReportRepository, ReportService) {
	t.Helper()
	f, _ := registeredFixture(t)
	reports := NewMockReportRepository()
	svc := NewReportService(reports, f.permissions, f.users, nil)
	return f, reports, svc
}

func TestInvoiceSummary(t *testing.T) {
	_, reports, svc := reportFixture(t)
	reports.Summary = &repository.InvoiceSummary{TotalCount: 12, TotalAmount: 3450.75}

	resp, err := svc.InvoiceSummary(context.Background(), "owner@acme.test", &dto.InvoiceSummaryRequest{
		Company:   "Acme Retail",
		CreatedBy: "owner@acme.test",
		FromDate:  "2026-08-01",
		ToDate:    "2026-08-31",
	})
	if err != nil {
		t.Fatalf("InvoiceSummary() error = %v", err)
	}
	if resp.TotalCount != 12 {
		t.Errorf("total count = %d, want 12", resp.TotalCount)
	}
	if resp.TotalAmount != 3450.75 {
		t.Errorf("total amount = %v, want 3450.75", resp.TotalAmount)
	}

	filter := reports.LastFilter
	if filter.Company != "Acme Retail" || filter.CreatedBy != "owner@acme.test" {
		t.Errorf("filter = %+v", filter)
	}
	wantFrom := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !filter.FromDate.Equal(wantFrom) {
		t.Errorf("from date = %v, want %v", filter.FromDate, wantFrom)
	}
	// End date is inclusive for the whole day.
	if !filter.ToDate.After(time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("to date = %v, want end of 2026-08-31", filter.ToDate)
	}
}

func TestInvoiceSummaryRejectsBadDates(t *testing.T) {
	_, _, svc := reportFixture(t)

	_, err := svc.InvoiceSummary(context.Background(), "owner@acme.test", &dto.InvoiceSummaryRequest{
		Company:  "Acme Retail",
		FromDate: "31-08-2026",
	})
	if err == nil {
		t.Fatal("expected error for malformed from_date")
	}
}

func TestReportsRequireMembership(t *testing.T) {
	f, _, svc := reportFixture(t)
	ctx := context.Background()
	f.seedUser(t, "outsider@other.test")

	_, err := svc.InvoiceSummary(ctx, "outsider@other.test", &dto.InvoiceSummaryRequest{Company: "Acme Retail"})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("InvoiceSummary() error = %v, want ErrNotAuthorized", err)
	}
	_, err = svc.ProfitAndLoss(ctx, "outsider@other.test", "Acme Retail")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("ProfitAndLoss() error = %v, want ErrNotAuthorized", err)
	}
}

func TestProfitAndLoss(t *testing.T) {
	_, reports, svc := reportFixture(t)
	reports.Totals = []*repository.CostCenterTotals{
		{CostCenter: "Main - ACM1234", Income: 1000, Expense: 400},
		{CostCenter: "Branch - ACM1234", Income: 250, Expense: 300},
	}

	resp, err := svc.ProfitAndLoss(context.Background(), "owner@acme.test", "Acme Retail")
	if err != nil {
		t.Fatalf("ProfitAndLoss() error = %v", err)
	}
	if len(resp.CostCenters) != 2 {
		t.Fatalf("cost centers = %d, want 2", len(resp.CostCenters))
	}
	if resp.CostCenters[0].Net != 600 {
		t.Errorf("net[0] = %v, want 600", resp.CostCenters[0].Net)
	}
	if resp.CostCenters[1].Net != -50 {
		t.Errorf("net[1] = %v, want -50", resp.CostCenters[1].Net)
	}
	if resp.TotalIncome != 1250 || resp.TotalExpense != 700 || resp.TotalNet != 550 {
		t.Errorf("totals = %v/%v/%v, want 1250/700/550", resp.TotalIncome, resp.TotalExpense, resp.TotalNet)
	}
}
