package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"bookrental-backend/internal/domains/staff/model"
	"bookrental-backend/internal/domains/staff/repository"
	"bookrental-backend/internal/shared/apperr"
)

const DefaultBcryptCost = 12

// TokenIssuer signs access tokens (pkg/jwt.Manager)
type TokenIssuer interface {
	GenerateAccessToken(staffID, email, role string) (string, time.Time, error)
}

type ServiceInterface interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	CreateStaff(ctx context.Context, req model.CreateStaffRequest) (*model.Staff, error)

	// EnsureAdmin creates the admin account on first start; existing
	// accounts are left untouched.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type staffService struct {
	repo       repository.RepositoryInterface
	tokens     TokenIssuer
	bcryptCost int
	now        func() time.Time
}

func NewService(repo repository.RepositoryInterface, tokens TokenIssuer, bcryptCost int) ServiceInterface {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = DefaultBcryptCost
	}
	return &staffService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *staffService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	staff, err := s.repo.GetByEmail(ctx, req.Email)
	if errors.Is(err, model.ErrStaffNotFound) {
		// same answer as a wrong password
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if !staff.IsActive {
		return nil, model.ErrStaffInactive
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(staff.ID.String(), staff.Email, string(staff.Role))
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, staff.ID, now); err != nil {
		log.Warn().Err(err).Str("staff_id", staff.ID.String()).Msg("[StaffService] failed to record last login")
	} else {
		staff.LastLoginAt = &now
	}

	log.Info().Str("staff_id", staff.ID.String()).Str("role", string(staff.Role)).Msg("Staff logged in")
	return &model.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Staff:       *staff,
	}, nil
}

func (s *staffService) CreateStaff(ctx context.Context, req model.CreateStaffRequest) (*model.Staff, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	staff := req.ToStaff(string(hash), s.now())
	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, err
	}

	log.Info().Str("staff_id", staff.ID.String()).Str("role", string(staff.Role)).Msg("Staff account created")
	return staff, nil
}

func (s *staffService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrStaffNotFound) {
		return err
	}

	_, err = s.CreateStaff(ctx, model.CreateStaffRequest{
		Email:    email,
		Password: password,
		FullName: "Administrator",
		Role:     model.RoleAdmin,
	})
	if errors.Is(err, model.ErrEmailAlreadyExists) {
		// another instance seeded it first
		return nil
	}
	return err
}
