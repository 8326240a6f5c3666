// Package tool implements the registry the dispatcher resolves model tool
// calls against. The core never executes tools itself (execution belongs to
// the host on the far side of the suspend boundary); it only needs each
// tool's name, description and argument schema to expose it to the model and
// to validate dispatched arguments.
package tool

import "fmt"

// Descriptor declaratively describes a host-executed tool.
//
// Descriptors should:
//   - Use descriptive snake_case names unique within a registry
//   - Provide a concise, imperative description shown to the model
//   - Carry a minimal JSON-Schema object for the accepted arguments
//     (type/properties/required subset)
type Descriptor struct {
	// Name is the unique identifier referenced by model tool calls.
	Name string
	// Description is exposed to the model to guide tool selection.
	Description string
	// InputSchema is a JSON Schema object describing the expected arguments.
	// A nil schema disables dispatch-time argument validation for the tool.
	InputSchema map[string]any
}

// Registry resolves tool names to descriptors. Implementations must be safe
// for concurrent use.
type Registry interface {
	// Resolve returns the descriptor for name, reporting existence.
	Resolve(name string) (Descriptor, bool)

	// Descriptors returns all registered descriptors in registration order.
	Descriptors() []Descriptor
}

// NewDescriptor constructs a Descriptor, deriving the input schema from the
// args struct type via ReflectSchema.
//
// Example:
//
//	type PostArgs struct {
//	  Channel string `json:"channel" jsonschema_description:"Target channel"`
//	  Text    string `json:"text" jsonschema_description:"Message body"`
//	}
//
//	desc := tool.NewDescriptor[PostArgs]("slack_post", "Post a message to Slack")
func NewDescriptor[T any](name, description string) Descriptor {
	return Descriptor{
		Name:        name,
		Description: description,
		InputSchema: ReflectSchema[T](),
	}
}

// Validate reports obviously unusable descriptors before registration.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("tool descriptor requires a name")
	}
	if d.Description == "" {
		return fmt.Errorf("tool %q requires a description", d.Name)
	}
	return nil
}
