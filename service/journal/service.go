// Package journal produces the per-worker append-only log artifacts: one
// record per received work item plus a final summary record written during
// the termination handshake.
package journal

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Factory opens journal writers under a common base URL. The base may use
// any scheme the virtual file system supports (file://, mem://, embed://).
type Factory struct {
	fs      afs.Service
	baseURL string
}

// NewFactory creates a journal factory.
func NewFactory(fs afs.Service, baseURL string) *Factory {
	return &Factory{fs: fs, baseURL: baseURL}
}

// Open creates the journal artifact for a worker identity. The artifact is
// created eagerly so that an unwritable destination surfaces before the
// worker starts, not on its first record.
func (f *Factory) Open(ctx context.Context, workerID string) (*Writer, error) {
	w := &Writer{
		fs:  f.fs,
		url: url.Join(f.baseURL, fmt.Sprintf("worker[%s].log", workerID)),
	}
	if err := w.flush(ctx); err != nil {
		return nil, fmt.Errorf("journal: failed to create %v: %w", w.url, err)
	}
	return w, nil
}

// Writer is a single worker's journal. Records accumulate in order; every
// record rewrites the artifact so its content always reflects the log so
// far. Safe for use by its single owning worker.
type Writer struct {
	fs  afs.Service
	url string
	mu  sync.Mutex
	buf bytes.Buffer
}

// URL returns the artifact location.
func (w *Writer) URL() string {
	return w.url
}

// Record appends one received-item record.
func (w *Writer) Record(ctx context.Context, timestep int, workerID, payload string) error {
	line := fmt.Sprintf("[t = %d] worker[%s] received message: %s", timestep, workerID, payload)
	return w.append(ctx, line)
}

// Terminated appends the record of a received termination sentinel.
func (w *Writer) Terminated(ctx context.Context, timestep int, workerID string) error {
	line := fmt.Sprintf("[t = %d] worker[%s] received TERMINATE message. exiting.", timestep, workerID)
	return w.append(ctx, line)
}

// Summary appends the final summary record: items processed and active
// duration in timesteps.
func (w *Writer) Summary(ctx context.Context, workerID string, lines, terminatedAt, activatedAt int) error {
	line := fmt.Sprintf("worker[%s] terminated. total lines received: %d, active time: %d - %d = %d steps",
		workerID, lines, terminatedAt, activatedAt, terminatedAt-activatedAt)
	return w.append(ctx, line)
}

func (w *Writer) append(ctx context.Context, line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.WriteString(line)
	if !strings.HasSuffix(line, "\n") {
		w.buf.WriteByte('\n')
	}
	return w.flush(ctx)
}

func (w *Writer) flush(ctx context.Context) error {
	return w.fs.Upload(ctx, w.url, file.DefaultFileOsMode, bytes.NewReader(w.buf.Bytes()))
}

// Close flushes the artifact one last time.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flush(ctx)
}
