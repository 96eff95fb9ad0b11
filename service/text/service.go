// Package text supplies the pool of candidate work-item lines. The
// coordinator only needs two operations from it: total line count and
// fetch-line-at-random-index.
package text

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/viant/afs"
)

// Source holds the work-item lines of a plain-text file. Any line,
// including an empty one, is a valid work item.
type Source struct {
	lines []string
}

// Load reads the text file at the given URL through the virtual file
// system.
func Load(ctx context.Context, fs afs.Service, URL string) (*Source, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("text: failed to load %v: %w", URL, err)
	}
	return New(data), nil
}

// New builds a source from raw file content. An empty file yields zero
// lines; a trailing newline does not produce a phantom last line.
func New(data []byte) *Source {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	if content == "" {
		return &Source{}
	}
	content = strings.TrimSuffix(content, "\n")
	return &Source{lines: strings.Split(content, "\n")}
}

// Count returns the total number of lines.
func (s *Source) Count() int {
	return len(s.lines)
}

// Line returns the line at the given index.
func (s *Source) Line(index int) (string, error) {
	if index < 0 || index >= len(s.lines) {
		return "", fmt.Errorf("text: line index %d out of range [0..%d)", index, len(s.lines))
	}
	return s.lines[index], nil
}

// Random returns a uniformly selected line. The second return value is
// false when the source has no lines.
func (s *Source) Random(r *rand.Rand) (string, bool) {
	if len(s.lines) == 0 {
		return "", false
	}
	return s.lines[r.Intn(len(s.lines))], true
}
