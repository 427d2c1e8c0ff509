package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookrental-backend/internal/domains/book/model"
	"bookrental-backend/internal/domains/book/repository"
	"bookrental-backend/internal/shared/apperr"
	"bookrental-backend/pkg/cache"
)

const defaultCacheTTL = 5 * time.Minute

func detailCacheKey(id uuid.UUID) string {
	return "book:detail:" + id.String()
}

type bookService struct {
	repo     repository.RepositoryInterface
	cache    cache.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService wires the book service. cache may be nil.
func NewService(repo repository.RepositoryInterface, c cache.Cache, cacheTTL time.Duration) ServiceInterface {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &bookService{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ========================================
// CATALOG
// ========================================

func (s *bookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	book := req.ToBook(s.now())
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	log.Info().Str("book_id", book.ID.String()).Int("copies", book.TotalCopies).Msg("Book created")
	return book, nil
}

// GetBook serves from cache first. Counters in a cached copy may lag by up
// to the cache TTL; decisions on copy counts use GetBookFromStore.
func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	key := detailCacheKey(id)

	if s.cache != nil {
		var cached model.Book
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[BookService] cache read failed")
		}
		if found {
			return &cached, nil
		}
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, book, s.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[BookService] cache write failed")
		}
	}
	return book, nil
}

// GetBookFromStore skips the cache
func (s *bookService) GetBookFromStore(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *bookService) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *bookService) UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	book, err := s.repo.Update(ctx, id, req.Apply)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return book, nil
}

// DeleteBook deactivates the book; rentals already out keep their snapshot
func (s *bookService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.Update(ctx, id, func(b *model.Book) error {
		b.IsActive = false
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)
	log.Info().Str("book_id", id.String()).Msg("Book deactivated")
	return nil
}

// ========================================
// INVENTORY
// ========================================

func (s *bookService) AllocateCopy(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	book, err := s.repo.AllocateCopy(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("allocate copy: %w", err)
	}
	s.invalidate(ctx, id)
	return book, nil
}

func (s *bookService) ReleaseCopy(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	book, err := s.repo.ReleaseCopy(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("release copy: %w", err)
	}
	s.invalidate(ctx, id)
	return book, nil
}

func (s *bookService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, detailCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("book_id", id.String()).Msg("[BookService] cache invalidation failed")
	}
}
