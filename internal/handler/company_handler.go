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

// CompanyHandler handles company provisioning HTTP requests
type CompanyHandler struct {
	provisionService service.ProvisionService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(provisionService service.ProvisionService) *CompanyHandler {
	return &CompanyHandler{provisionService: provisionService}
}

// Register handles company provisioning
// POST /api/v1/companies/register
//
// Authenticated callers provision for themselves; guests must carry the
// user_email of an already signed-up account in the body.
func (h *CompanyHandler) Register(c *gin.Context) {
	var req dto.RegisterCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	if valid, msg := req.ValidateIndustry(); !valid {
		c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeInvalidIndustry, msg))
		return
	}

	requester, _ := middleware.GetEmail(c)

	result, err := h.provisionService.Register(c.Request.Context(), requester, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrganizationNameRequired),
			errors.Is(err, service.ErrUserEmailRequired):
			c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("User not found. Sign up before registering a company"))
		case errors.Is(err, service.ErrDuplicateRegistration):
			c.JSON(http.StatusConflict, response.DuplicateRegistration(""))
		case errors.Is(err, service.ErrInvalidIndustry):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeInvalidIndustry, err.Error()))
		case errors.Is(err, service.ErrCompanyContention):
			c.JSON(http.StatusConflict, response.ProvisionConflict(""))
		default:
			c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}
