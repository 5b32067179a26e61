package algorithm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/me/godp/internal/dataset"
	"github.com/me/godp/pkg/model"
)

// Statistical computes summary statistics (mean, population standard
// deviation, min, max, median) over a numeric dataset.
type Statistical struct {
	Base
}

// NewStatistical creates a statistical analysis algorithm.
func NewStatistical() *Statistical {
	return &Statistical{
		Base: NewBase("StatisticalAnalysis", "Statistical analysis of numeric data", model.KindNumeric),
	}
}

// Execute computes the summary statistics report.
func (a *Statistical) Execute(ds dataset.Dataset) model.Result {
	src, ok := ds.(dataset.NumericSource)
	if !ok || !a.Supports(ds.Kind()) {
		return mismatch(a.Type(), ds.Kind())
	}
	if ds.IsEmpty() {
		return model.FailureResult("empty dataset")
	}

	values := src.Values()
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var median float64
	n := len(sorted)
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		median = sorted[n/2]
	}

	var sb strings.Builder
	sb.WriteString("Statistical Analysis Results:\n")
	fmt.Fprintf(&sb, "Mean: %g\n", src.Mean())
	fmt.Fprintf(&sb, "Standard Deviation: %g\n", src.StdDev())
	fmt.Fprintf(&sb, "Min: %g\n", src.Min())
	fmt.Fprintf(&sb, "Max: %g\n", src.Max())
	fmt.Fprintf(&sb, "Median: %g\n", median)

	return model.SuccessResult(sb.String())
}
