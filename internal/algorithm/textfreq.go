package algorithm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/me/godp/internal/dataset"
	"github.com/me/godp/pkg/model"
)

// TextAnalysis reports the unique-word count and the ten most frequent words
// of a text dataset.
type TextAnalysis struct {
	Base
}

// NewTextAnalysis creates a word-frequency analysis algorithm.
func NewTextAnalysis() *TextAnalysis {
	return &TextAnalysis{
		Base: NewBase("TextAnalysis", "Word frequency analysis of text data", model.KindText),
	}
}

// Execute sorts the word-frequency table and reports the top entries.
func (a *TextAnalysis) Execute(ds dataset.Dataset) model.Result {
	src, ok := ds.(dataset.TextSource)
	if !ok || !a.Supports(ds.Kind()) {
		return mismatch(a.Type(), ds.Kind())
	}

	freq := src.WordFrequency()
	if len(freq) == 0 {
		return model.FailureResult("empty dataset")
	}

	type wordCount struct {
		word  string
		count int
	}
	sorted := make([]wordCount, 0, len(freq))
	for w, c := range freq {
		sorted = append(sorted, wordCount{w, c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].word < sorted[j].word
	})

	var sb strings.Builder
	sb.WriteString("Text Analysis Results:\n")
	fmt.Fprintf(&sb, "Total unique words: %d\n", len(freq))
	sb.WriteString("Top 10 most frequent words:\n")
	for i, wc := range sorted {
		if i == 10 {
			break
		}
		fmt.Fprintf(&sb, "%s: %d occurrences\n", wc.word, wc.count)
	}

	return model.SuccessResult(sb.String())
}
