package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weatherSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{"type": "string"},
			"days":     map[string]any{"type": "integer"},
			"detailed": map[string]any{"type": "boolean"},
		},
		"required": []string{"location"},
	}
}

func TestValidateParameters_Valid(t *testing.T) {
	err := ValidateParameters(map[string]any{
		"location": "Berlin, DE",
		"days":     float64(3), // JSON numbers decode as float64
		"detailed": true,
	}, weatherSchema())

	assert.NoError(t, err)
}

func TestValidateParameters_MissingRequired(t *testing.T) {
	err := ValidateParameters(map[string]any{"days": float64(3)}, weatherSchema())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "location", verr.Field)
}

func TestValidateParameters_WrongType(t *testing.T) {
	err := ValidateParameters(map[string]any{
		"location": "Berlin, DE",
		"days":     "three",
	}, weatherSchema())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "days", verr.Field)
}

func TestValidateParameters_FractionalIntegerRejected(t *testing.T) {
	err := ValidateParameters(map[string]any{
		"location": "Berlin, DE",
		"days":     2.5,
	}, weatherSchema())

	require.Error(t, err)
}

func TestValidateParameters_RequiredAsAnySlice(t *testing.T) {
	// Schemas decoded from JSON carry required as []any.
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"key": map[string]any{"type": "string"}},
		"required":   []any{"key"},
	}

	require.Error(t, ValidateParameters(map[string]any{}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"key": "v"}, schema))
}

func TestValidateParameters_ExtraFieldsAllowed(t *testing.T) {
	err := ValidateParameters(map[string]any{
		"location": "Berlin, DE",
		"unknown":  42,
	}, weatherSchema())

	assert.NoError(t, err)
}
