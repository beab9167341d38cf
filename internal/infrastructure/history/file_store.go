package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

// FileStore appends generation records to a JSONL file. It backs the SQLite
// store when the database cannot be opened and is handy in tests.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store writing to the given file.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save appends one record.
func (f *FileStore) Save(record domain.GenerationRecord) error {
	record = stamp(record)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}

// Records loads stored entries, newest first, applying the same limit and
// search semantics as the SQLite store. Corrupt lines are skipped.
func (f *FileStore) Records(limit int, search string) ([]domain.GenerationRecord, error) {
	f.mu.Lock()
	data, err := os.ReadFile(f.path)
	f.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	needle := strings.ToLower(search)
	var records []domain.GenerationRecord
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec domain.GenerationRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(rec.Description), needle) &&
			!strings.Contains(strings.ToLower(rec.Command), needle) {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Clear removes the backing file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ExportJSON writes every record to dest as JSON lines.
func (f *FileStore) ExportJSON(dest string) error {
	records, err := f.Records(0, "")
	if err != nil {
		return err
	}
	return writeJSONL(dest, records)
}

// Path returns the backing file location.
func (f *FileStore) Path() string {
	return f.path
}

func writeJSONL(dest string, records []domain.GenerationRecord) error {
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.HistoryStore = (*FileStore)(nil)
