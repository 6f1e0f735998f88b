package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Entry is a single file inside an export archive.
type Entry struct {
	Name string
	Data []byte
}

// Archive writes the entries into an in-memory zip. Entry names are used
// verbatim, so callers must deduplicate them first.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}
