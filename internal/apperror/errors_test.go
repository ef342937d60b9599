package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorKeepsCause(t *testing.T) {
	err := fmt.Errorf("list: %w", &StoreError{Op: "find", Err: context.DeadlineExceeded})

	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "find")
}

func TestAggregationErrorNamesStage(t *testing.T) {
	cause := &StoreError{Op: "aggregate", Err: errors.New("connection refused")}
	err := error(&AggregationError{Stage: "priceDistribution", Err: cause})

	assert.True(t, errors.Is(err, ErrAggregationFailed))
	assert.True(t, errors.Is(err, ErrStoreUnavailable))

	var aggErr *AggregationError
	if assert.True(t, errors.As(err, &aggErr)) {
		assert.Equal(t, "priceDistribution", aggErr.Stage)
	}
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("validation failed", FieldError{Field: "price", Message: "price must be >= 0"})

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "validation failed (price: price must be >= 0)", err.Error())

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Fields, 1)
}
