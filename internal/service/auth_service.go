package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/internal/dto"
	"github.com/draftpos/HavanoCompany/internal/repository"
	"github.com/draftpos/HavanoCompany/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// AuthConfig holds token issuing settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	Issuer         string
}

// AuthService authenticates accounts and issues access tokens. The token
// carries the email as the requester identity, plus the account type and
// default company as convenience claims.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	users       repository.UserRepository
	permissions repository.PermissionRepository
	cfg         *AuthConfig
	log         *logger.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users repository.UserRepository,
	permissions repository.PermissionRepository,
	cfg *AuthConfig,
	log *logger.Logger,
) AuthService {
	if log == nil {
		log = logger.Get()
	}
	return &authService{
		users:       users,
		permissions: permissions,
		cfg:         cfg,
		log:         log,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	account, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	if !account.Enabled {
		return nil, ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	var company string
	if perm, err := s.permissions.GetDefault(ctx, account.Email, domain.PermissionCompany); err != nil {
		return nil, err
	} else if perm != nil {
		company = perm.ForValue
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)
	claims := jwt.MapClaims{
		"email":     account.Email,
		"user_type": account.UserType,
		"company":   company,
		"iss":       s.cfg.Issuer,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user logged in", zap.String("user", account.Email))

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.AccessTokenTTL.Seconds()),
		Email:       account.Email,
		FullName:    account.FullName,
		UserType:    account.UserType,
		Company:     company,
	}, nil
}
