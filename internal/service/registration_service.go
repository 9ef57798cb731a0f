package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/internal/dto"
	"github.com/draftpos/HavanoCompany/internal/repository"
	"github.com/draftpos/HavanoCompany/pkg/logger"
)

var ErrRegistrationNotFound = errors.New("company registration not found")

// RegistrationService manages a user's own registration record. The
// company link and status are owned by the provisioning workflow and are
// never writable here.
type RegistrationService interface {
	GetOwn(ctx context.Context, userEmail string) (*dto.RegistrationResponse, error)
	UpdateOwn(ctx context.Context, userEmail string, req *dto.UpdateRegistrationRequest) (*dto.RegistrationResponse, error)
	DeleteOwn(ctx context.Context, userEmail string) error
}

type registrationService struct {
	registrations repository.RegistrationRepository
	log           *logger.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(registrations repository.RegistrationRepository, log *logger.Logger) RegistrationService {
	if log == nil {
		log = logger.Get()
	}
	return &registrationService{registrations: registrations, log: log}
}

func (s *registrationService) GetOwn(ctx context.Context, userEmail string) (*dto.RegistrationResponse, error) {
	reg, err := s.registrations.GetByUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	resp := toRegistrationResponse(reg)
	return &resp, nil
}

func (s *registrationService) UpdateOwn(ctx context.Context, userEmail string, req *dto.UpdateRegistrationRequest) (*dto.RegistrationResponse, error) {
	if req.Industry != nil && !domain.IsValidIndustry(*req.Industry) {
		return nil, ErrInvalidIndustry
	}

	reg, err := s.registrations.GetByUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}

	if req.OrganizationName != nil {
		reg.OrganizationName = *req.OrganizationName
	}
	if req.FullName != nil {
		reg.FullName = *req.FullName
	}
	if req.Email != nil {
		reg.Email = *req.Email
	}
	if req.Phone != nil {
		reg.Phone = *req.Phone
	}
	if req.Industry != nil {
		reg.Industry = *req.Industry
	}
	if req.Country != nil {
		reg.Country = *req.Country
	}
	if req.City != nil {
		reg.City = *req.City
	}
	reg.UpdatedAt = time.Now()

	if err := s.registrations.Update(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	resp := toRegistrationResponse(reg)
	return &resp, nil
}

func (s *registrationService) DeleteOwn(ctx context.Context, userEmail string) error {
	reg, err := s.registrations.GetByUser(ctx, userEmail)
	if err != nil {
		return err
	}
	if reg == nil {
		return ErrRegistrationNotFound
	}
	if err := s.registrations.Delete(ctx, reg.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	s.log.InfoContext(ctx, "registration deleted",
		zap.String("user", userEmail),
		zap.String("registration_id", reg.ID),
	)
	return nil
}
