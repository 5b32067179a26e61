package algorithm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/me/godp/internal/dataset"
	"github.com/me/godp/pkg/model"
)

// KMeans clusters one-dimensional numeric samples around k centroids.
// Parameters: "k" (cluster count, default 3) and "maxIterations"
// (default 100), both parsed during Initialize.
type KMeans struct {
	Base
	k             int
	maxIterations int
}

// NewKMeans creates a k-means clustering algorithm with default parameters.
func NewKMeans() *KMeans {
	a := &KMeans{
		Base: NewBase("KMeansClustering", "K-means clustering algorithm", model.KindNumeric),
	}
	a.SetParameter("k", "3")
	a.SetParameter("maxIterations", "100")
	return a
}

// Initialize parses the k and maxIterations parameters. Unparsable or
// non-positive values fail initialization.
func (a *KMeans) Initialize() bool {
	k, err := strconv.Atoi(a.GetParameter("k"))
	if err != nil || k <= 0 {
		return false
	}
	maxIter, err := strconv.Atoi(a.GetParameter("maxIterations"))
	if err != nil || maxIter <= 0 {
		return false
	}
	a.k = k
	a.maxIterations = maxIter
	return true
}

// Execute runs Lloyd's iteration until assignments stabilize or the
// iteration budget is exhausted.
func (a *KMeans) Execute(ds dataset.Dataset) model.Result {
	src, ok := ds.(dataset.NumericSource)
	if !ok || !a.Supports(ds.Kind()) {
		return mismatch(a.Type(), ds.Kind())
	}
	if ds.IsEmpty() {
		return model.FailureResult("empty dataset")
	}

	data := src.Values()
	if len(data) < a.k {
		return model.FailureResult("Not enough data points for k clusters")
	}

	// Seed centroids spread across the sample sequence.
	centroids := make([]float64, a.k)
	for i := range centroids {
		centroids[i] = data[i*len(data)/a.k]
	}

	clusters := make([]int, len(data))
	changed := true
	iteration := 0

	for changed && iteration < a.maxIterations {
		changed = false

		for i, v := range data {
			nearest := 0
			minDist := math.Abs(v - centroids[0])
			for j := 1; j < a.k; j++ {
				if dist := math.Abs(v - centroids[j]); dist < minDist {
					minDist = dist
					nearest = j
				}
			}
			if clusters[i] != nearest {
				clusters[i] = nearest
				changed = true
			}
		}

		sums := make([]float64, a.k)
		counts := make([]int, a.k)
		for i, v := range data {
			sums[clusters[i]] += v
			counts[clusters[i]]++
		}
		for i := range centroids {
			if counts[i] > 0 {
				centroids[i] = sums[i] / float64(counts[i])
			}
		}
		iteration++
	}

	var sb strings.Builder
	sb.WriteString("K-means Clustering Results:\n")
	fmt.Fprintf(&sb, "Number of clusters: %d\n", a.k)
	fmt.Fprintf(&sb, "Number of iterations: %d\n", iteration)
	sb.WriteString("Final centroids:\n")
	for i, c := range centroids {
		fmt.Fprintf(&sb, "Cluster %d: %g\n", i, c)
	}

	return model.SuccessResult(sb.String())
}
