package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

type titled struct {
	Title string `json:"title" validate:"notblank,max=5"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(domain.CollectionDraft{Title: "Moodboard"}))
	assert.NoError(t, v.Validate(domain.SaveItem{ID: "p1", Type: domain.SaveProject, Image: "img.png"}))
	assert.NoError(t, v.Validate(domain.CartItem{ID: "a1", Title: "Icons", Price: 0}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		input any
		field string
		msg   string
	}{
		{"missing title", domain.CollectionDraft{}, "title", "is required"},
		{"bad save type", domain.SaveItem{ID: "x", Type: "course"}, "type", "must be one of: project article"},
		{"negative price", domain.CartItem{ID: "a", Title: "t", Price: -1}, "price", "must be greater than or equal to 0"},
		{"blank title", titled{Title: "   "}, "title", "is required"},
		{"long title", titled{Title: "toolong"}, "title", "must not exceed 5 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.msg, details[tt.field])
		})
	}
}

func TestValidator_MaxCountsRunes(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(titled{Title: "ñañañ"}))
}
