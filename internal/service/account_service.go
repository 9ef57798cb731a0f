package service

import (
	"context"
	"errors"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/internal/dto"
	"github.com/draftpos/HavanoCompany/internal/repository"
	"github.com/draftpos/HavanoCompany/pkg/logger"
)

var (
	ErrEmailTaken   = errors.New("an account with this email already exists")
	ErrWeakPassword = errors.New("password must be at least 8 characters with upper, lower and digit")
)

// AccountService manages accounts and the post-login profile summary.
type AccountService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error)
	// Profile returns the user's default scopes and registration state,
	// the payload a client needs right after login.
	Profile(ctx context.Context, userEmail string) (*dto.ProfileResponse, error)
}

type accountService struct {
	users         repository.UserRepository
	registrations repository.RegistrationRepository
	permissions   repository.PermissionRepository
	log           *logger.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	users repository.UserRepository,
	registrations repository.RegistrationRepository,
	permissions repository.PermissionRepository,
	log *logger.Logger,
) AccountService {
	if log == nil {
		log = logger.Get()
	}
	return &accountService{
		users:         users,
		registrations: registrations,
		permissions:   permissions,
		log:           log,
	}
}

// Signup creates a website-level account. Company provisioning later
// promotes it to a full system account.
func (s *accountService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	if !validPassword(req.Password) {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	fullName := req.FullName
	if fullName == "" {
		fullName = req.FirstName
		if req.LastName != "" {
			fullName += " " + req.LastName
		}
	}

	now := time.Now()
	user := &domain.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		FullName:     fullName,
		PasswordHash: string(hash),
		Enabled:      true,
		UserType:     domain.UserTypeWebsiteUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if _, err := s.users.GrantRole(ctx, user.Email, domain.RoleDeskUser); err != nil {
		s.log.ErrorContext(ctx, "failed to grant base role to new account",
			zap.String("user", user.Email),
			zap.Error(err),
		)
	}

	s.log.InfoContext(ctx, "account created", zap.String("user", user.Email))

	return &dto.SignupResponse{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName,
	}, nil
}

// Profile assembles the post-login summary for a user.
func (s *accountService) Profile(ctx context.Context, userEmail string) (*dto.ProfileResponse, error) {
	account, err := s.users.GetByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrUserNotFound
	}

	roles, err := s.users.ListRoles(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProfileResponse{
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		FullName:    account.FullName,
		UserType:    account.UserType,
		Roles:       roles,
		Warehouses:  make([]string, 0),
		CostCenters: make([]string, 0),
	}

	if perm, err := s.permissions.GetDefault(ctx, userEmail, domain.PermissionCompany); err != nil {
		return nil, err
	} else if perm != nil {
		resp.Company = perm.ForValue
	}
	if perm, err := s.permissions.GetDefault(ctx, userEmail, domain.PermissionWarehouse); err != nil {
		return nil, err
	} else if perm != nil {
		resp.DefaultWarehouse = perm.ForValue
	}
	if perm, err := s.permissions.GetDefault(ctx, userEmail, domain.PermissionCostCenter); err != nil {
		return nil, err
	} else if perm != nil {
		resp.DefaultCostCenter = perm.ForValue
	}
	if perm, err := s.permissions.GetDefault(ctx, userEmail, domain.PermissionCustomer); err != nil {
		return nil, err
	} else if perm != nil {
		resp.DefaultCustomer = perm.ForValue
	}

	warehousePerms, err := s.permissions.ListByUser(ctx, userEmail, domain.PermissionWarehouse)
	if err != nil {
		return nil, err
	}
	for _, perm := range warehousePerms {
		resp.Warehouses = append(resp.Warehouses, perm.ForValue)
	}

	costCenterPerms, err := s.permissions.ListByUser(ctx, userEmail, domain.PermissionCostCenter)
	if err != nil {
		return nil, err
	}
	for _, perm := range costCenterPerms {
		resp.CostCenters = append(resp.CostCenters, perm.ForValue)
	}

	reg, err := s.registrations.GetByUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if reg != nil {
		resp.HasRegistration = true
		regResp := toRegistrationResponse(reg)
		resp.Registration = &regResp
		if reg.CompanyName == "" {
			resp.CompanyMessage = "Company setup did not finish. Contact support or retry registration."
		}
	}
	return resp, nil
}

// validPassword requires at least 8 characters with an upper-case letter,
// a lower-case letter and a digit.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
