package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookrental-backend/internal/domains/staff/model"
)

type RepositoryInterface interface {
	Create(ctx context.Context, staff *model.Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Staff, error)
	GetByEmail(ctx context.Context, email string) (*model.Staff, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
