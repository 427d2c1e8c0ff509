package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookrental-backend/internal/domains/reader/model"
	"bookrental-backend/internal/domains/reader/repository"
	"bookrental-backend/internal/shared/apperr"
)

type ServiceInterface interface {
	CreateReader(ctx context.Context, req model.CreateReaderRequest) (*model.Reader, error)
	GetReader(ctx context.Context, id uuid.UUID) (*model.Reader, error)
	ListReaders(ctx context.Context, filter model.ReaderFilter) ([]model.Reader, int, error)
	UpdateReader(ctx context.Context, id uuid.UUID, req model.UpdateReaderRequest) (*model.Reader, error)
	DeleteReader(ctx context.Context, id uuid.UUID) error
}

type readerService struct {
	repo repository.RepositoryInterface
	now  func() time.Time
}

func NewService(repo repository.RepositoryInterface) ServiceInterface {
	return &readerService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *readerService) CreateReader(ctx context.Context, req model.CreateReaderRequest) (*model.Reader, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	reader := req.ToReader(s.now())
	if err := s.repo.Create(ctx, reader); err != nil {
		return nil, err
	}

	log.Info().
		Str("reader_id", reader.ID.String()).
		Str("category", reader.Category.String()).
		Msg("Reader registered")
	return reader, nil
}

func (s *readerService) GetReader(ctx context.Context, id uuid.UUID) (*model.Reader, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *readerService) ListReaders(ctx context.Context, filter model.ReaderFilter) ([]model.Reader, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// UpdateReader merges the patch. A category change only affects rentals
// created afterwards since rentals keep their own discount amount.
func (s *readerService) UpdateReader(ctx context.Context, id uuid.UUID, req model.UpdateReaderRequest) (*model.Reader, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}
	return s.repo.Update(ctx, id, req.Apply)
}

func (s *readerService) DeleteReader(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.Update(ctx, id, func(r *model.Reader) error {
		r.IsActive = false
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("reader_id", id.String()).Msg("Reader deactivated")
	return nil
}
