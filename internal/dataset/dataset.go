// Package dataset defines the pluggable data-source contract consumed by the
// task engine and the built-in numeric and text implementations.
package dataset

import "github.com/me/godp/pkg/model"

// Dataset is a pluggable, shared, read-only data source. The engine only
// reads Size and IsEmpty; everything else is for algorithms, which identify
// the concrete shape through Kind and the accessor interfaces below rather
// than by downcasting to an implementation type.
//
// A dataset is treated as immutable once it is referenced by a submitted
// task. Reloading or preprocessing it while tasks read it is a caller error.
type Dataset interface {
	// Kind tags the concrete data shape (NUMERIC, TEXT, ...).
	Kind() model.DataKind

	// Size returns the number of entries held.
	Size() int

	// IsEmpty reports whether the dataset holds no entries.
	IsEmpty() bool

	// Description returns a human-readable summary.
	Description() string

	// Load reads and parses the given source into the dataset, replacing
	// any previous content.
	Load(source string) error

	// Validate reports whether the loaded content is usable.
	Validate() bool

	// Preprocess applies the dataset's cleaning pass (outlier removal,
	// normalization) in place.
	Preprocess() error

	// Clear drops all content.
	Clear()
}

// NumericSource is the accessor contract a NUMERIC dataset offers to
// algorithms.
type NumericSource interface {
	Values() []float64
	Mean() float64
	StdDev() float64
	Min() float64
	Max() float64
}

// TextSource is the accessor contract a TEXT dataset offers to algorithms.
type TextSource interface {
	Lines() []string
	WordFrequency() map[string]int
}
