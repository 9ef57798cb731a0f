package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/draftpos/HavanoCompany/internal/dto"
	"github.com/draftpos/HavanoCompany/internal/service"
	"github.com/draftpos/HavanoCompany/pkg/middleware"
	"github.com/draftpos/HavanoCompany/pkg/response"
)

// ReportHandler handles company report HTTP requests
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// InvoiceSummary handles the sales invoice summary report
// POST /api/v1/reports/invoice-summary
func (h *ReportHandler) InvoiceSummary(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	var req dto.InvoiceSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.reportService.InvoiceSummary(c.Request.Context(), email, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			c.JSON(http.StatusForbidden, response.Forbidden(""))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// ProfitAndLoss handles the per-cost-center profit and loss report
// GET /api/v1/reports/profit-and-loss?company=<name>
func (h *ReportHandler) ProfitAndLoss(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	company := c.Query("company")
	if company == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("company query parameter is required"))
		return
	}

	result, err := h.reportService.ProfitAndLoss(c.Request.Context(), email, company)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			c.JSON(http.StatusForbidden, response.Forbidden(""))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}
