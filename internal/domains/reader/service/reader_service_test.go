package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrental-backend/internal/domains/reader/model"
	"bookrental-backend/internal/domains/reader/repository"
	"bookrental-backend/internal/shared/apperr"
	"bookrental-backend/internal/shared/utils"
)

func TestReaderService_Lifecycle(t *testing.T) {
	svc := NewService(repository.NewMemoryRepository())
	ctx := context.Background()

	reader, err := svc.CreateReader(ctx, model.CreateReaderRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Phone:     "5551000",
		Email:     utils.StringPtr("grace@navy.mil"),
		Category:  model.CategoryEmployee,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, reader.DiscountPercentage)

	_, err = svc.CreateReader(ctx, model.CreateReaderRequest{
		FirstName: "Other", LastName: "Person", Phone: "5552000", Email: utils.StringPtr("grace@navy.mil"),
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	senior := model.CategorySenior
	updated, err := svc.UpdateReader(ctx, reader.ID, model.UpdateReaderRequest{Category: &senior})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.DiscountPercentage)

	require.NoError(t, svc.DeleteReader(ctx, reader.ID))
	got, err := svc.GetReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	readers, total, err := svc.ListReaders(ctx, model.ReaderFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, readers)
}

func TestReaderService_Errors(t *testing.T) {
	svc := NewService(repository.NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.CreateReader(ctx, model.CreateReaderRequest{FirstName: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.GetReader(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrReaderNotFound)

	err = svc.DeleteReader(ctx, uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
