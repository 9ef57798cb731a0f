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

// MembershipHandler handles company membership HTTP requests
type MembershipHandler struct {
	membershipService service.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(membershipService service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// AssignUser handles assigning a user to a company
// POST /api/v1/companies/users/assign
func (h *MembershipHandler) AssignUser(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	var req dto.AssignUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.membershipService.AssignUser(c.Request.Context(), email, &req)
	if err != nil {
		h.writeMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// RemoveUser handles revoking a user's access to a company
// POST /api/v1/companies/users/remove
func (h *MembershipHandler) RemoveUser(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	var req dto.RemoveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	err := h.membershipService.RemoveUser(c.Request.Context(), email, req.UserEmail, req.CompanyName)
	if err != nil {
		h.writeMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{"message": "User removed from company successfully"}))
}

// CompanyUsers handles listing the members of a company
// GET /api/v1/companies/users?company=<name>
func (h *MembershipHandler) CompanyUsers(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	result, err := h.membershipService.CompanyUsers(c.Request.Context(), email, c.Query("company"))
	if err != nil {
		h.writeMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// UserCompanies handles listing the caller's companies
// GET /api/v1/users/me/companies
func (h *MembershipHandler) UserCompanies(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	result, err := h.membershipService.UserCompanies(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

func (h *MembershipHandler) writeMembershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCompanyNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Company not found"))
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("User not found"))
	case errors.Is(err, service.ErrNotMember):
		c.JSON(http.StatusNotFound, response.NotFound("User is not a member of this company"))
	case errors.Is(err, service.ErrNoCompany):
		c.JSON(http.StatusBadRequest, response.BadRequest("No company specified and the requester owns none"))
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, response.Forbidden(""))
	case errors.Is(err, service.ErrCannotRemoveOwner):
		c.JSON(http.StatusConflict, response.Error(response.ErrCodeConflict, "The company owner cannot be removed"))
	default:
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
	}
}
