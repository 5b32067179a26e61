package dataset

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/me/godp/pkg/model"
)

// Numeric holds a sequence of float samples loaded from a line-delimited
// source. Summary statistics are recomputed on every mutation and exposed
// both through NumericSource and as string metadata.
type Numeric struct {
	data     []float64
	min      float64
	max      float64
	mean     float64
	stdDev   float64
	metadata map[string]string
	cleaned  bool
}

// NewNumeric creates an empty numeric dataset.
func NewNumeric() *Numeric {
	return &Numeric{metadata: make(map[string]string)}
}

// Kind returns model.KindNumeric.
func (d *Numeric) Kind() model.DataKind { return model.KindNumeric }

// Size returns the number of samples.
func (d *Numeric) Size() int { return len(d.data) }

// IsEmpty reports whether no samples are loaded.
func (d *Numeric) IsEmpty() bool { return len(d.data) == 0 }

// Description summarizes the dataset contents, noting whether outlier
// removal has run.
func (d *Numeric) Description() string {
	if d.cleaned {
		return fmt.Sprintf("numeric dataset, %d samples (outliers removed)", len(d.data))
	}
	return fmt.Sprintf("numeric dataset, %d samples", len(d.data))
}

// Load parses a newline-delimited numeric file. Lines that do not parse as
// floats are skipped. Fails if the file cannot be opened or no valid sample
// is found.
func (d *Numeric) Load(source string) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer f.Close()

	d.data = d.data[:0]
	d.cleaned = false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			// Invalid entries are skipped, not fatal.
			continue
		}
		d.data = append(d.data, v)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}

	d.recompute()
	if len(d.data) == 0 {
		return fmt.Errorf("no numeric samples in %s", source)
	}
	return nil
}

// SetValues replaces the dataset content directly, bypassing file loading.
// Used by callers that already hold samples in memory (and by tests).
func (d *Numeric) SetValues(values []float64) {
	d.data = append(d.data[:0], values...)
	d.recompute()
}

// Validate reports whether at least one sample is loaded.
func (d *Numeric) Validate() bool { return len(d.data) > 0 }

// Preprocess removes outliers using the 1.5·IQR fence and recomputes the
// summary statistics.
func (d *Numeric) Preprocess() error {
	if len(d.data) == 0 {
		return fmt.Errorf("preprocess: empty dataset")
	}

	sorted := append([]float64(nil), d.data...)
	sort.Float64s(sorted)

	n := len(sorted)
	q1 := sorted[n/4]
	q3 := sorted[3*n/4]
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	kept := d.data[:0]
	for _, v := range d.data {
		if v >= lower && v <= upper {
			kept = append(kept, v)
		}
	}
	d.data = kept
	d.cleaned = true
	d.recompute()
	return nil
}

// Clear drops all samples.
func (d *Numeric) Clear() {
	d.data = nil
	d.cleaned = false
	d.recompute()
}

// Values returns the raw samples. Callers must not mutate the slice.
func (d *Numeric) Values() []float64 { return d.data }

// Mean returns the arithmetic mean, or 0 for an empty dataset.
func (d *Numeric) Mean() float64 { return d.mean }

// StdDev returns the population standard deviation.
func (d *Numeric) StdDev() float64 { return d.stdDev }

// Min returns the smallest sample.
func (d *Numeric) Min() float64 { return d.min }

// Max returns the largest sample.
func (d *Numeric) Max() float64 { return d.max }

// Metadata returns the named statistic rendered as a string, or "".
func (d *Numeric) Metadata(key string) string { return d.metadata[key] }

func (d *Numeric) recompute() {
	if len(d.data) == 0 {
		d.min, d.max, d.mean, d.stdDev = 0, 0, 0, 0
		clear(d.metadata)
		return
	}

	d.min, d.max = d.data[0], d.data[0]
	sum := 0.0
	for _, v := range d.data {
		if v < d.min {
			d.min = v
		}
		if v > d.max {
			d.max = v
		}
		sum += v
	}
	d.mean = sum / float64(len(d.data))

	sumSq := 0.0
	for _, v := range d.data {
		diff := v - d.mean
		sumSq += diff * diff
	}
	d.stdDev = math.Sqrt(sumSq / float64(len(d.data)))

	d.metadata["min"] = strconv.FormatFloat(d.min, 'g', -1, 64)
	d.metadata["max"] = strconv.FormatFloat(d.max, 'g', -1, 64)
	d.metadata["mean"] = strconv.FormatFloat(d.mean, 'g', -1, 64)
	d.metadata["std_dev"] = strconv.FormatFloat(d.stdDev, 'g', -1, 64)
}
