package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Page     int    `json:"page" validate:"gte=1"`
}

func TestStructValid(t *testing.T) {
	fields := Struct(sampleRequest{
		Email:    "alice@example.com",
		Password: "supersecret",
		Name:     "Alice",
		Page:     1,
	})
	assert.Nil(t, fields)
}

func TestStructReportsEveryFailingField(t *testing.T) {
	fields := Struct(sampleRequest{
		Email:    "not-an-email",
		Password: "short",
		Page:     0,
	})
	require.NotNil(t, fields)

	// One entry per violated field, not just the first one.
	assert.Len(t, fields, 4)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 8 characters", fields["password"])
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be 1 or greater", fields["page"])
}

func TestStructUsesJSONFieldNames(t *testing.T) {
	fields := Struct(sampleRequest{})
	require.NotNil(t, fields)
	assert.Contains(t, fields, "email")
	assert.NotContains(t, fields, "Email")
}
