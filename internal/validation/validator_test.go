package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"products-api/internal/apperror"
	"products-api/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestValidateProductInput(t *testing.T) {
	tests := []struct {
		name   string
		input  models.ProductInput
		fields []string
	}{
		{"valid", models.ProductInput{Title: "Phone", Price: ptr(10.0)}, nil},
		{"missing price", models.ProductInput{Title: "Phone"}, []string{"price"}},
		{"blank title", models.ProductInput{Title: "   ", Price: ptr(1.0)}, []string{"title"}},
		{"negative price", models.ProductInput{Title: "x", Price: ptr(-1.0)}, []string{"price"}},
		{"rating out of range", models.ProductInput{Title: "x", Price: ptr(1.0), Rating: ptr(5.5)}, []string{"rating"}},
		{"negative stock", models.ProductInput{Title: "x", Price: ptr(1.0), Stock: ptr(-2)}, []string{"stock"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.fields == nil {
				require.NoError(t, err)
				return
			}

			got := FieldErrors(err)
			names := make([]string, 0, len(got))
			for _, f := range got {
				names = append(names, f.Field)
				assert.NotEmpty(t, f.Message)
			}
			assert.Equal(t, tt.fields, names)
		})
	}
}

func TestValidateUpdateAllowsNilTitle(t *testing.T) {
	assert.NoError(t, ValidateStruct(&models.ProductUpdate{Price: ptr(3.0)}))
	assert.Error(t, ValidateStruct(&models.ProductUpdate{Title: ptr(" ")}))
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(apperror.ErrNotFound))
}
