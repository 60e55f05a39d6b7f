package s3blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneakarb/sneakarb/internal/domain"
)

type fakeWriter struct {
	puts map[string]string // key -> content type
	body []byte
}

func (f *fakeWriter) Put(_ context.Context, path string, data io.Reader, contentType string) error {
	if f.puts == nil {
		f.puts = make(map[string]string)
	}
	f.puts[path] = contentType
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.body = body
	return nil
}

func TestArchiveReport(t *testing.T) {
	w := &fakeWriter{}
	a := NewArchiver(w)

	startedAt := time.Date(2019, 7, 28, 11, 6, 32, 0, time.UTC)
	key, err := a.ArchiveReport(context.Background(), "naive", startedAt, []byte("<html/>"))
	require.NoError(t, err)

	assert.Equal(t, "reports/naive/20190728-110632.html", key)
	assert.Equal(t, "text/html; charset=utf-8", w.puts[key])
	assert.Equal(t, "<html/>", string(w.body))
}

func TestArchiveSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "du.20190728-110632.txt")
	require.NoError(t, os.WriteFile(path, []byte(`{"aq0818148":{}}`), 0o644))

	w := &fakeWriter{}
	a := NewArchiver(w)

	observed := time.Date(2019, 7, 28, 11, 6, 32, 0, time.UTC)
	key, err := a.ArchiveSnapshot(context.Background(), domain.VenueDu, observed, path)
	require.NoError(t, err)

	assert.Equal(t, "snapshots/du/20190728-110632/du.20190728-110632.txt", key)
	assert.Equal(t, `{"aq0818148":{}}`, string(w.body))
}
