// Package algorithm defines the pluggable computation contract invoked by
// the task engine and the built-in statistical, clustering, and text
// implementations.
package algorithm

import (
	"slices"

	"github.com/me/godp/internal/dataset"
	"github.com/me/godp/pkg/model"
)

// Algorithm is a stateful computation unit. Each instance is bound to
// exactly one task: the engine applies the task's parameters, calls
// Initialize once, then Execute once.
type Algorithm interface {
	// Type returns the algorithm type name.
	Type() string

	// Description returns a human-readable summary.
	Description() string

	// SupportedKinds lists the dataset kinds Execute accepts.
	SupportedKinds() []model.DataKind

	// Initialize validates parameters and prepares internal state. A false
	// return fails the owning task without Execute being called.
	Initialize() bool

	// Execute runs the computation against the dataset and reports the
	// outcome as a Result. It never reports failure by panicking.
	Execute(ds dataset.Dataset) model.Result

	// SetParameter stores a configuration value, reporting acceptance.
	SetParameter(key, value string) bool

	// GetParameter returns a stored value, or "" when unset.
	GetParameter(key string) string
}

// Base carries the name, description, parameter map, and supported kinds
// shared by algorithm implementations.
type Base struct {
	name        string
	description string
	params      map[string]string
	kinds       []model.DataKind
}

// NewBase creates the shared algorithm state.
func NewBase(name, description string, kinds ...model.DataKind) Base {
	return Base{
		name:        name,
		description: description,
		params:      make(map[string]string),
		kinds:       kinds,
	}
}

// Type returns the algorithm type name.
func (b *Base) Type() string { return b.name }

// Description returns the human-readable summary.
func (b *Base) Description() string { return b.description }

// SupportedKinds lists the dataset kinds this algorithm accepts.
func (b *Base) SupportedKinds() []model.DataKind { return b.kinds }

// Initialize accepts by default; implementations with parameters override it.
func (b *Base) Initialize() bool { return true }

// SetParameter stores the value unconditionally.
func (b *Base) SetParameter(key, value string) bool {
	b.params[key] = value
	return true
}

// GetParameter returns the stored value, or "".
func (b *Base) GetParameter(key string) string { return b.params[key] }

// Supports reports whether the given kind is accepted.
func (b *Base) Supports(kind model.DataKind) bool {
	return slices.Contains(b.kinds, kind)
}

// mismatch builds the standard typed-failure Result for an unsupported
// dataset kind.
func mismatch(algType string, got model.DataKind) model.Result {
	return model.FailureResult(
		"dataset type mismatch: " + algType + " does not support " + got.String() + " datasets")
}
