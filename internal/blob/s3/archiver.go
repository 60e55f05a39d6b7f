package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sneakarb/sneakarb/internal/domain"
)

// Archiver uploads run artifacts so every report and raw venue snapshot
// stays reproducible after the local files rotate.
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates an Archiver on top of the given writer.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveReport uploads one rendered HTML report, keyed by strategy and run
// start time, and returns the object key.
func (a *Archiver) ArchiveReport(ctx context.Context, strategy string, startedAt time.Time, html []byte) (string, error) {
	key := fmt.Sprintf("reports/%s/%s.html", strategy, startedAt.UTC().Format("20060102-150405"))
	if err := a.writer.Put(ctx, key, bytes.NewReader(html), "text/html; charset=utf-8"); err != nil {
		return "", fmt.Errorf("s3blob: archive report: %w", err)
	}
	return key, nil
}

// ArchiveSnapshot uploads one raw venue snapshot file under the venue and
// observation time, and returns the object key.
func (a *Archiver) ArchiveSnapshot(ctx context.Context, venue domain.Venue, observedAt time.Time, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("s3blob: open snapshot %s: %w", path, err)
	}
	defer file.Close()

	key := fmt.Sprintf("snapshots/%s/%s/%s",
		venue, observedAt.UTC().Format("20060102-150405"), filepath.Base(path))
	if err := a.put(ctx, key, file); err != nil {
		return "", err
	}
	return key, nil
}

func (a *Archiver) put(ctx context.Context, key string, data io.Reader) error {
	if err := a.writer.Put(ctx, key, data, "application/octet-stream"); err != nil {
		return fmt.Errorf("s3blob: archive snapshot: %w", err)
	}
	return nil
}
