package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/promptdeck/promptdeck-server/internal/errors"
)

type createTagRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()

	err := v.Validate(&createTagRequest{Name: "programming", Color: "#1A2B3C"})
	assert.NoError(t, err)
}

func TestValidate_RequiredField(t *testing.T) {
	v := New()

	err := v.Validate(&createTagRequest{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	// Details use the JSON field name, not the Go field name.
	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", fields["name"])
}

func TestValidate_BadColorToken(t *testing.T) {
	v := New()

	err := v.Validate(&createTagRequest{Name: "ai", Color: "magenta"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields["color"], "hex color")
}
