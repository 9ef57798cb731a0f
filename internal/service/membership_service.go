package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/internal/dto"
	"github.com/draftpos/HavanoCompany/internal/repository"
	"github.com/draftpos/HavanoCompany/pkg/logger"
)

var (
	ErrCompanyNotFound   = errors.New("company not found")
	ErrNoCompany         = errors.New("requester has no company")
	ErrNotAuthorized     = errors.New("requester is not allowed to manage this company")
	ErrNotMember         = errors.New("user is not a member of this company")
	ErrCannotRemoveOwner = errors.New("the company owner cannot be removed")
)

// MembershipService manages which users can work under a company. Only
// the company owner (the user whose registration created it) or a System
// Manager may change membership.
type MembershipService interface {
	AssignUser(ctx context.Context, requester string, req *dto.AssignUserRequest) (*dto.AssignUserResponse, error)
	RemoveUser(ctx context.Context, requester, userEmail, companyName string) error
	CompanyUsers(ctx context.Context, requester, companyName string) (*dto.CompanyUsersResponse, error)
	UserCompanies(ctx context.Context, userEmail string) (*dto.UserCompaniesResponse, error)
}

type membershipService struct {
	registrations repository.RegistrationRepository
	companies     repository.CompanyRepository
	permissions   repository.PermissionRepository
	users         repository.UserRepository
	log           *logger.Logger
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(
	registrations repository.RegistrationRepository,
	companies repository.CompanyRepository,
	permissions repository.PermissionRepository,
	users repository.UserRepository,
	log *logger.Logger,
) MembershipService {
	if log == nil {
		log = logger.Get()
	}
	return &membershipService{
		registrations: registrations,
		companies:     companies,
		permissions:   permissions,
		users:         users,
		log:           log,
	}
}

// AssignUser grants an existing user access to a company. Assigning an
// already-member is reported, not an error, so the call stays idempotent.
func (s *membershipService) AssignUser(ctx context.Context, requester string, req *dto.AssignUserRequest) (*dto.AssignUserResponse, error) {
	companyName, err := s.resolveCompany(ctx, requester, req.CompanyName)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManager(ctx, requester, companyName); err != nil {
		return nil, err
	}

	target, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.permissions.Get(ctx, req.UserEmail, domain.PermissionCompany, companyName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &dto.AssignUserResponse{
			User:          req.UserEmail,
			Company:       companyName,
			PermissionID:  existing.ID,
			AlreadyMember: true,
		}, nil
	}

	// First company becomes the user's default scope.
	currentDefault, err := s.permissions.GetDefault(ctx, req.UserEmail, domain.PermissionCompany)
	if err != nil {
		return nil, err
	}

	perm := &domain.UserPermission{
		ID:         uuid.New().String(),
		UserEmail:  req.UserEmail,
		Allow:      domain.PermissionCompany,
		ForValue:   companyName,
		ApplyToAll: true,
		IsDefault:  currentDefault == nil,
		CreatedAt:  time.Now(),
	}
	if err := s.permissions.Create(ctx, perm); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return nil, err
	}

	if _, err := s.users.GrantRole(ctx, req.UserEmail, domain.RoleCompanyUser); err != nil {
		s.log.ErrorContext(ctx, "failed to grant company role to assigned user",
			zap.String("user", req.UserEmail),
			zap.Error(err),
		)
	}

	s.log.InfoContext(ctx, "user assigned to company",
		zap.String("user", req.UserEmail),
		zap.String("company", companyName),
		zap.String("requester", requester),
	)

	return &dto.AssignUserResponse{
		User:          req.UserEmail,
		Company:       companyName,
		PermissionID:  perm.ID,
		AlreadyMember: false,
	}, nil
}

// RemoveUser revokes a user's access to a company. The owner is protected.
func (s *membershipService) RemoveUser(ctx context.Context, requester, userEmail, companyName string) error {
	companyName, err := s.resolveCompany(ctx, requester, companyName)
	if err != nil {
		return err
	}
	if err := s.authorizeManager(ctx, requester, companyName); err != nil {
		return err
	}

	owner, err := s.registrations.GetByCompany(ctx, companyName)
	if err != nil {
		return err
	}
	if owner != nil && owner.UserEmail == userEmail {
		return ErrCannotRemoveOwner
	}

	if err := s.permissions.Delete(ctx, userEmail, domain.PermissionCompany, companyName); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotMember
		}
		return err
	}

	s.log.InfoContext(ctx, "user removed from company",
		zap.String("user", userEmail),
		zap.String("company", companyName),
		zap.String("requester", requester),
	)
	return nil
}

// CompanyUsers lists the members of a company. Any member may list.
func (s *membershipService) CompanyUsers(ctx context.Context, requester, companyName string) (*dto.CompanyUsersResponse, error) {
	companyName, err := s.resolveCompany(ctx, requester, companyName)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMember(ctx, requester, companyName); err != nil {
		return nil, err
	}

	owner, err := s.registrations.GetByCompany(ctx, companyName)
	if err != nil {
		return nil, err
	}

	perms, err := s.permissions.ListByValue(ctx, domain.PermissionCompany, companyName)
	if err != nil {
		return nil, err
	}

	resp := &dto.CompanyUsersResponse{
		Company: companyName,
		Users:   make([]dto.CompanyUser, 0, len(perms)),
	}
	for _, perm := range perms {
		account, err := s.users.GetByEmail(ctx, perm.UserEmail)
		if err != nil {
			return nil, err
		}
		member := dto.CompanyUser{
			Email:        perm.UserEmail,
			PermissionID: perm.ID,
			IsDefault:    perm.IsDefault,
			AssignedOn:   perm.CreatedAt.Format(time.RFC3339),
		}
		if account != nil {
			member.FullName = account.FullName
			member.Enabled = account.Enabled
			member.UserType = account.UserType
		}
		if owner != nil && owner.UserEmail == perm.UserEmail {
			ownerCopy := member
			resp.Owner = &ownerCopy
		}
		resp.Users = append(resp.Users, member)
	}
	resp.TotalUsers = len(resp.Users)
	return resp, nil
}

// UserCompanies lists the companies a user can work under.
func (s *membershipService) UserCompanies(ctx context.Context, userEmail string) (*dto.UserCompaniesResponse, error) {
	perms, err := s.permissions.ListByUser(ctx, userEmail, domain.PermissionCompany)
	if err != nil {
		return nil, err
	}

	resp := &dto.UserCompaniesResponse{
		User:           userEmail,
		Companies:      make([]dto.UserCompany, 0, len(perms)),
		OwnedCompanies: make([]string, 0, 1),
	}
	for _, perm := range perms {
		entry := dto.UserCompany{
			Company:      perm.ForValue,
			PermissionID: perm.ID,
			IsDefault:    perm.IsDefault,
			AssignedOn:   perm.CreatedAt.Format(time.RFC3339),
		}
		company, err := s.companies.GetByName(ctx, perm.ForValue)
		if err != nil {
			return nil, err
		}
		if company != nil {
			entry.Country = company.Country
			entry.Abbr = company.Abbr
		}
		resp.Companies = append(resp.Companies, entry)
	}

	reg, err := s.registrations.GetByUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if reg != nil && reg.CompanyName != "" {
		resp.OwnedCompanies = append(resp.OwnedCompanies, reg.CompanyName)
	}
	resp.TotalCompanies = len(resp.Companies)
	return resp, nil
}

// resolveCompany falls back to the requester's own company when the call
// does not name one.
func (s *membershipService) resolveCompany(ctx context.Context, requester, companyName string) (string, error) {
	if companyName != "" {
		exists, err := s.companies.Exists(ctx, companyName)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", ErrCompanyNotFound
		}
		return companyName, nil
	}
	reg, err := s.registrations.GetByUser(ctx, requester)
	if err != nil {
		return "", err
	}
	if reg == nil || reg.CompanyName == "" {
		return "", ErrNoCompany
	}
	return reg.CompanyName, nil
}

// authorizeManager allows the company owner and System Managers.
func (s *membershipService) authorizeManager(ctx context.Context, requester, companyName string) error {
	owner, err := s.registrations.GetByCompany(ctx, companyName)
	if err != nil {
		return err
	}
	if owner != nil && owner.UserEmail == requester {
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

// authorizeMember allows any member of the company, plus whoever
// authorizeManager allows.
func (s *membershipService) authorizeMember(ctx context.Context, requester, companyName string) error {
	isMember, err := s.permissions.Exists(ctx, requester, domain.PermissionCompany, companyName)
	if err != nil {
		return err
	}
	if isMember {
		return nil
	}
	return s.authorizeManager(ctx, requester, companyName)
}
