// Package ingest loads the on-disk venue snapshots into typed per-venue
// source maps keyed by sanitized style id, then size token.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// flexFloat accepts a JSON number or a numeric string: the venue dumps are
// not consistent about which they emit.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("ingest: empty number")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("ingest: parse number %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// ObservationTimeFromPath recovers the snapshot's crawl time from feed file
// names of the form "<venue>.<yyyymmdd-hhmmss>.txt". When the name does not
// carry a timestamp the file's modification time is used instead.
func ObservationTimeFromPath(path string) time.Time {
	parts := strings.Split(filepath.Base(path), ".")
	if len(parts) >= 3 {
		if t, err := time.Parse("20060102-150405", parts[1]); err == nil {
			return t
		}
	}
	if info, err := os.Stat(path); err == nil {
		return info.ModTime().UTC()
	}
	return time.Now().UTC()
}
