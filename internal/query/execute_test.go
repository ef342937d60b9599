package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"products-api/internal/apperror"
	"products-api/internal/models"
)

type stubFinder struct {
	items    []models.Product
	total    int64
	countErr error
	findErr  error

	gotSkip, gotLimit int
}

func (s *stubFinder) Find(_ context.Context, _ Filter, _ Sort, skip, limit int) ([]models.Product, error) {
	s.gotSkip, s.gotLimit = skip, limit
	return s.items, s.findErr
}

func (s *stubFinder) Count(context.Context, Filter) (int64, error) {
	return s.total, s.countErr
}

func TestExecuteUsesPageWindow(t *testing.T) {
	store := &stubFinder{items: []models.Product{{Title: "A"}}, total: 31}

	res, err := Execute(context.Background(), store, Plan{Page: Page{Number: 3, Limit: 10}})

	require.NoError(t, err)
	assert.Equal(t, 20, store.gotSkip)
	assert.Equal(t, 10, store.gotLimit)
	assert.Equal(t, int64(31), res.Total)
	assert.Len(t, res.Items, 1)
}

func TestExecuteEmptyIsNotAnError(t *testing.T) {
	res, err := Execute(context.Background(), &stubFinder{}, Plan{Page: Page{Number: 1, Limit: 10}})

	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Total)
}

func TestExecutePropagatesStoreErrors(t *testing.T) {
	storeErr := &apperror.StoreError{Op: "count", Err: errors.New("no reachable servers")}

	_, err := Execute(context.Background(), &stubFinder{countErr: storeErr}, Plan{Page: Page{Number: 1, Limit: 10}})

	assert.True(t, errors.Is(err, apperror.ErrStoreUnavailable))
}
