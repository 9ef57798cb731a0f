package service

import (
	"context"
	"fmt"
	"time"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/internal/dto"
	"github.com/draftpos/HavanoCompany/internal/repository"
	"github.com/draftpos/HavanoCompany/pkg/logger"
)

const reportDateLayout = "2006-01-02"

// ReportService serves company-scoped read-side aggregations. Callers
// must hold a company permission for the company they query.
type ReportService interface {
	InvoiceSummary(ctx context.Context, requester string, req *dto.InvoiceSummaryRequest) (*dto.InvoiceSummaryResponse, error)
	ProfitAndLoss(ctx context.Context, requester, companyName string) (*dto.ProfitAndLossResponse, error)
}

type reportService struct {
	reports     repository.ReportRepository
	permissions repository.PermissionRepository
	users       repository.UserRepository
	log         *logger.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(
	reports repository.ReportRepository,
	permissions repository.PermissionRepository,
	users repository.UserRepository,
	log *logger.Logger,
) ReportService {
	if log == nil {
		log = logger.Get()
	}
	return &reportService{
		reports:     reports,
		permissions: permissions,
		users:       users,
		log:         log,
	}
}

func (s *reportService) InvoiceSummary(ctx context.Context, requester string, req *dto.InvoiceSummaryRequest) (*dto.InvoiceSummaryResponse, error) {
	if err := s.authorize(ctx, requester, req.Company); err != nil {
		return nil, err
	}

	filter := &repository.InvoiceSummaryFilter{
		Company:   req.Company,
		CreatedBy: req.CreatedBy,
	}
	if req.FromDate != "" {
		t, err := time.Parse(reportDateLayout, req.FromDate)
		if err != nil {
			return nil, fmt.Errorf("invalid from_date: %w", err)
		}
		filter.FromDate = t
	}
	if req.ToDate != "" {
		t, err := time.Parse(reportDateLayout, req.ToDate)
		if err != nil {
			return nil, fmt.Errorf("invalid to_date: %w", err)
		}
		// Inclusive end of day
		filter.ToDate = t.Add(24*time.Hour - time.Nanosecond)
	}

	summary, err := s.reports.InvoiceSummary(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceSummaryResponse{
		TotalCount:  summary.TotalCount,
		TotalAmount: summary.TotalAmount,
	}, nil
}

func (s *reportService) ProfitAndLoss(ctx context.Context, requester, companyName string) (*dto.ProfitAndLossResponse, error) {
	if err := s.authorize(ctx, requester, companyName); err != nil {
		return nil, err
	}

	totals, err := s.reports.CostCenterTotals(ctx, companyName)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProfitAndLossResponse{
		Company:     companyName,
		CostCenters: make([]dto.CostCenterPL, 0, len(totals)),
	}
	for _, t := range totals {
		pl := dto.CostCenterPL{
			CostCenter: t.CostCenter,
			Income:     t.Income,
			Expense:    t.Expense,
			Net:        t.Income - t.Expense,
		}
		resp.CostCenters = append(resp.CostCenters, pl)
		resp.TotalIncome += pl.Income
		resp.TotalExpense += pl.Expense
	}
	resp.TotalNet = resp.TotalIncome - resp.TotalExpense
	return resp, nil
}

func (s *reportService) authorize(ctx context.Context, requester, companyName string) error {
	isMember, err := s.permissions.Exists(ctx, requester, domain.PermissionCompany, companyName)
	if err != nil {
		return err
	}
	if isMember {
		return nil
	}
	isManager, err := s.users.HasRole(ctx, requester, domain.RoleSystemManager)
	if err != nil {
		return err
	}
	if !isManager {
		return ErrNotAuthorized
	}
	return nil
}
