package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() ([]*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &LoadError{Path: s.path, Err: err}
	}

	records, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Path: s.path, Err: err}
	}

	slog.Debug("Feeds file loaded", "path", s.path, "records", len(records))
	return records, nil
}

// Save replaces the feeds file with records. The new content goes to a
// temporary file in the same directory which is then renamed over the
// original, so a failed save never leaves a truncated file behind.
func (s *Store) Save(records []*Record) error {
	data, err := Encode(records)
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}

	if err := WriteFileAtomic(s.path, data); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}

	slog.Debug("Feeds file saved", "path", s.path, "records", len(records))
	return nil
}

func Decode(data []byte) ([]*Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("expected JSON array of feeds, got %s", preview(trimmed))
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	records := make([]*Record, 0, len(raws))
	for i, raw := range raws {
		record, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid record at index %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Encode renders records as a two-space indented JSON array with a trailing
// newline. Non-ASCII and HTML characters are written as is.
func Encode(records []*Record) ([]byte, error) {
	var buf bytes.Buffer

	if len(records) == 0 {
		buf.WriteString("[]\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("[\n")
	for i, record := range records {
		buf.WriteString("  ")
		if err := record.writeIndented(&buf, "  "); err != nil {
			return nil, fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		if i < len(records)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")

	return buf.Bytes(), nil
}

func WriteFileAtomic(path string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
