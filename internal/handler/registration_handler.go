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

// RegistrationHandler handles requests for the caller's own registration
type RegistrationHandler struct {
	registrationService service.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler
func NewRegistrationHandler(registrationService service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Get handles retrieving the caller's registration
// GET /api/v1/registrations/me
func (h *RegistrationHandler) Get(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	result, err := h.registrationService.GetOwn(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Company registration not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Update handles partial update of the caller's registration
// PATCH /api/v1/registrations/me
func (h *RegistrationHandler) Update(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	var req dto.UpdateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	result, err := h.registrationService.UpdateOwn(c.Request.Context(), email, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("Company registration not found"))
		case errors.Is(err, service.ErrInvalidIndustry):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeInvalidIndustry, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Delete handles deleting the caller's registration
// DELETE /api/v1/registrations/me
func (h *RegistrationHandler) Delete(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	if err := h.registrationService.DeleteOwn(c.Request.Context(), email); err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Company registration not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Company registration deleted successfully"}))
}
