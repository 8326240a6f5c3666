package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewActionResult_MarshalsOutput(t *testing.T) {
	res := NewActionResult("c1", map[string]any{"temp": 21.5}, false)

	assert.Equal(t, "c1", res.ID)
	assert.JSONEq(t, `{"temp":21.5}`, string(res.Output))
	assert.False(t, res.IsError)
}

func TestActionResult_OutputText(t *testing.T) {
	// JSON strings are unquoted for transcript embedding.
	assert.Equal(t, "sunny", NewActionResult("c1", "sunny", false).OutputText())

	// Non-string documents are kept verbatim.
	doc := NewActionResult("c2", map[string]any{"v": 1}, false)
	assert.JSONEq(t, `{"v":1}`, doc.OutputText())
}

func TestNewActionResult_UnserializableOutput(t *testing.T) {
	res := NewActionResult("c1", func() {}, true)

	assert.Equal(t, "unserializable tool output", res.OutputText())
	assert.True(t, res.IsError)
}
