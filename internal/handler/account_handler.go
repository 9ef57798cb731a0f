package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/internal/dto"
	"github.com/draftpos/HavanoCompany/internal/service"
	"github.com/draftpos/HavanoCompany/pkg/middleware"
	"github.com/draftpos/HavanoCompany/pkg/response"
)

// AccountHandler handles account and authentication HTTP requests
type AccountHandler struct {
	accountService service.AccountService
	authService    service.AuthService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService service.AccountService, authService service.AuthService) *AccountHandler {
	return &AccountHandler{accountService: accountService, authService: authService}
}

// Signup handles account creation
// POST /api/v1/auth/signup
func (h *AccountHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.accountService.Signup(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeWeakPassword, err.Error()))
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, response.Error(response.ErrCodeDuplicateEntry, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// Login handles credential login and token issuance
// POST /api/v1/auth/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, response.Unauthorized("Invalid email or password"))
		case errors.Is(err, service.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, response.Forbidden("Account is disabled"))
		default:
			c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Profile handles the caller's post-login summary
// GET /api/v1/users/me/profile
func (h *AccountHandler) Profile(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	result, err := h.accountService.Profile(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// IndustryOptions handles listing the valid industry values
// GET /api/v1/industries
func (h *AccountHandler) IndustryOptions(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(&dto.IndustryOptionsResponse{
		Industries: domain.ValidIndustries,
	}))
}
