package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherArgs struct {
	Location string `json:"location" jsonschema_description:"City and country"`
	Unit     string `json:"unit,omitempty"`
}

func TestStaticRegistry_RegisterAndResolve(t *testing.T) {
	reg, err := NewStaticRegistry(
		NewDescriptor[weatherArgs]("get_weather", "Get current weather"),
	)
	require.NoError(t, err)

	desc, ok := reg.Resolve("get_weather")
	require.True(t, ok)
	assert.Equal(t, "get_weather", desc.Name)

	_, ok = reg.Resolve("missing")
	assert.False(t, ok)
}

func TestStaticRegistry_RejectsDuplicates(t *testing.T) {
	reg := MustStaticRegistry(NewDescriptor[weatherArgs]("get_weather", "Get current weather"))

	err := reg.Register(NewDescriptor[weatherArgs]("get_weather", "duplicate"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestStaticRegistry_RejectsInvalidDescriptors(t *testing.T) {
	_, err := NewStaticRegistry(Descriptor{Name: "", Description: "nameless"})
	require.Error(t, err)

	_, err = NewStaticRegistry(Descriptor{Name: "x", Description: ""})
	require.Error(t, err)
}

func TestStaticRegistry_DescriptorsPreserveOrder(t *testing.T) {
	reg := MustStaticRegistry(
		Descriptor{Name: "b", Description: "second registered first"},
		Descriptor{Name: "a", Description: "first registered second"},
	)

	descs := reg.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, "b", descs[0].Name)
	assert.Equal(t, "a", descs[1].Name)
}

func TestReflectSchema(t *testing.T) {
	schema := ReflectSchema[weatherArgs]()

	assert.Equal(t, "object", schema["type"])
	assert.NotContains(t, schema, "$schema")

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "location")
	assert.Contains(t, props, "unit")

	required, ok := schema["required"].([]any)
	require.True(t, ok)
	assert.Contains(t, required, "location")
	assert.NotContains(t, required, "unit")
}
