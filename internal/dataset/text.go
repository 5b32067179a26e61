package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/me/godp/pkg/model"
)

// Text holds lines of text and a derived word-frequency table.
type Text struct {
	lines    []string
	wordFreq map[string]int
	metadata map[string]string
	cleaned  bool
}

// NewText creates an empty text dataset.
func NewText() *Text {
	return &Text{
		wordFreq: make(map[string]int),
		metadata: make(map[string]string),
	}
}

// Kind returns model.KindText.
func (d *Text) Kind() model.DataKind { return model.KindText }

// Size returns the number of lines.
func (d *Text) Size() int { return len(d.lines) }

// IsEmpty reports whether no lines are loaded.
func (d *Text) IsEmpty() bool { return len(d.lines) == 0 }

// Description summarizes the dataset contents, noting whether
// normalization has run.
func (d *Text) Description() string {
	if d.cleaned {
		return fmt.Sprintf("text dataset, %d lines, %d unique words (normalized)", len(d.lines), len(d.wordFreq))
	}
	return fmt.Sprintf("text dataset, %d lines, %d unique words", len(d.lines), len(d.wordFreq))
}

// Load reads a text file, keeping non-empty lines, and rebuilds the
// word-frequency table.
func (d *Text) Load(source string) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer f.Close()

	d.lines = d.lines[:0]
	d.cleaned = false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			d.lines = append(d.lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}

	d.recount()
	if len(d.lines) == 0 {
		return fmt.Errorf("no text lines in %s", source)
	}
	return nil
}

// SetLines replaces the dataset content directly, bypassing file loading.
func (d *Text) SetLines(lines []string) {
	d.lines = append(d.lines[:0], lines...)
	d.recount()
}

// Validate reports whether at least one line is loaded.
func (d *Text) Validate() bool { return len(d.lines) > 0 }

// Preprocess lowercases every line, collapses runs of whitespace, trims the
// ends, and rebuilds the word-frequency table.
func (d *Text) Preprocess() error {
	if len(d.lines) == 0 {
		return fmt.Errorf("preprocess: empty dataset")
	}

	for i, line := range d.lines {
		d.lines[i] = strings.Join(strings.Fields(strings.ToLower(line)), " ")
	}
	d.cleaned = true
	d.recount()
	return nil
}

// Clear drops all content.
func (d *Text) Clear() {
	d.lines = nil
	d.cleaned = false
	d.wordFreq = make(map[string]int)
	clear(d.metadata)
}

// Lines returns the raw lines. Callers must not mutate the slice.
func (d *Text) Lines() []string { return d.lines }

// WordFrequency returns the word→count table. Callers must not mutate it.
func (d *Text) WordFrequency() map[string]int { return d.wordFreq }

// Metadata returns the named statistic rendered as a string, or "".
func (d *Text) Metadata(key string) string { return d.metadata[key] }

func (d *Text) recount() {
	d.wordFreq = make(map[string]int)
	total := 0
	for _, line := range d.lines {
		for _, word := range strings.Fields(line) {
			d.wordFreq[word]++
			total++
		}
	}
	d.metadata["unique_words"] = strconv.Itoa(len(d.wordFreq))
	d.metadata["total_words"] = strconv.Itoa(total)
}
