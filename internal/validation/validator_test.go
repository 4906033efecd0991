package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storecore/domain"
)

type signup struct {
	Name     string `json:"name" validate:"max=10"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestStructPasses(t *testing.T) {
	assert.NoError(t, Struct(&signup{Email: "ada@example.com", Password: "secret"}))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(&signup{Name: "far too long a name", Email: "nope", Password: "123"})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Contains(t, err.Error(), "name must be at most 10 characters")
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "password must be at least 6 characters")
}

func TestStructRequired(t *testing.T) {
	err := Struct(&signup{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}

func TestStructRejectsNonStruct(t *testing.T) {
	err := Struct("plain string")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
