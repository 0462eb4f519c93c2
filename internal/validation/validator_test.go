package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/macontouch/notebook/internal/errors"
	"github.com/macontouch/notebook/internal/validation"
)

type entryRequest struct {
	Name     string `json:"name" validate:"notblank,max=200"`
	Category string `json:"category" validate:"catcode"`
	Image    string `json:"image" validate:"imagedata"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,numeric,min=6"`
}

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestValidator_Valid(t *testing.T) {
	v := validation.New()
	err := v.Validate(entryRequest{Name: "Sunset", Category: "B", Image: pixel, Phone: "9876543210"})
	assert.NoError(t, err)
}

func TestValidator_FieldErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       entryRequest
		wantField string
		wantMsg   string
	}{
		{"blank name", entryRequest{Name: "   ", Category: "B", Image: pixel}, "name", "is required"},
		{"code with space", entryRequest{Name: "a", Category: "B X", Image: pixel}, "category", "must be a code without spaces"},
		{"image not base64", entryRequest{Name: "a", Category: "B", Image: "not an image!"}, "image", "must be a base64 image or data URI"},
		{"phone letters", entryRequest{Name: "a", Category: "B", Image: pixel, Phone: "12ab56"}, "phone", "must contain only digits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}
