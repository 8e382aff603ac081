// Package backup saves exported data before destructive management commands.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Writer stores backups as files in one directory.
type Writer struct {
	dir string
	now func() time.Time
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

func (w *Writer) Dir() string {
	return w.dir
}

// Write saves data under a "<UTC timestamp> <suffix>.json" name and returns
// that name. Byte slices and strings are written as is, anything else as
// indented JSON.
func (w *Writer) Write(suffix string, data any) (string, error) {
	body, err := encode(data)
	if err != nil {
		return "", fmt.Errorf("Write: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("Write: can't create backup dir: %w", err)
	}

	stamp := w.now().UTC().Format("2006-01-02T15-04-05Z")
	filename := fmt.Sprintf("%s %s.json", stamp, suffix)
	f, err := os.OpenFile(filepath.Join(w.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		filename = fmt.Sprintf("%s %s %s.json", stamp, suffix, uuid.NewString()[:8])
		f, err = os.OpenFile(filepath.Join(w.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("Write: %w", err)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		return "", fmt.Errorf("Write: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("Write: %w", err)
	}
	slog.Info("backup saved", "file", filename, "bytes", len(body))
	return filename, nil
}

func encode(data any) ([]byte, error) {
	switch v := data.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return json.MarshalIndent(data, "", "  ")
}
