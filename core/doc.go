// Package core defines the shared data model of the suspend/resume
// orchestration protocol: transcript messages and their content blocks,
// tool calls and their pending bookkeeping, the host-facing action
// correlation pair, execution results and the structured error taxonomy.
//
// The package is dependency-free within the module so every other package
// (model adapters, dispatcher, matcher, memory, engine) can share these
// types without import cycles.
package core
