// Package history persists generation records locally. The primary store is
// SQLite; when the database cannot be opened the package degrades to an
// append-only JSONL file next to it rather than losing records.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

// SQLiteStore persists generation records in a SQLite database. History is
// write-mostly: the generation pipeline only appends, reads happen through
// the history subcommands.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	fallback *FileStore
	mu       sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path. When the database
// cannot be opened or initialized, the store silently degrades to a JSONL
// file in the same directory.
func NewSQLiteStore(path string, log ports.Logger) *SQLiteStore {
	store := &SQLiteStore{
		path:     path,
		fallback: NewFileStore(strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl"),
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		if log != nil {
			log.Warn("history database unavailable", map[string]interface{}{"error": err.Error()})
		}
		return store
	}
	db, err := sql.Open("sqlite", path)
	if err == nil {
		store.db = db
		err = store.init()
	}
	if err != nil {
		if log != nil {
			log.Warn("history database unavailable", map[string]interface{}{"error": err.Error()})
		}
		store.db = nil
	}
	return store
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		description TEXT NOT NULL,
		shell TEXT NOT NULL,
		command TEXT,
		explanation TEXT,
		verdict TEXT NOT NULL,
		matched_rule TEXT,
		model TEXT,
		from_override INTEGER NOT NULL DEFAULT 0
	);`)
	if err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	return nil
}

// Save appends one record, filling in the id and timestamp when absent.
func (s *SQLiteStore) Save(record domain.GenerationRecord) error {
	record = stamp(record)
	if s.db == nil {
		return s.fallback.Save(record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO generations
		(id, timestamp, description, shell, command, explanation, verdict, matched_rule, model, from_override)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.Format(time.RFC3339),
		record.Description,
		record.Shell,
		record.Command,
		record.Explanation,
		string(record.Verdict),
		record.MatchedRule,
		record.Model,
		boolToInt(record.FromOverride),
	)
	return err
}

// Records returns stored entries, newest first. A positive limit caps the
// result; a non-empty search keeps only records whose description or
// command contains it.
func (s *SQLiteStore) Records(limit int, search string) ([]domain.GenerationRecord, error) {
	if s.db == nil {
		return s.fallback.Records(limit, search)
	}
	var query strings.Builder
	query.WriteString(`SELECT id, timestamp, description, shell, command, explanation, verdict, matched_rule, model, from_override FROM generations`)
	var args []interface{}
	if search != "" {
		query.WriteString(" WHERE description LIKE ? OR command LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	query.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.GenerationRecord
	for rows.Next() {
		var rec domain.GenerationRecord
		var ts, verdict string
		var fromOverride int
		if err := rows.Scan(&rec.ID, &ts, &rec.Description, &rec.Shell, &rec.Command,
			&rec.Explanation, &verdict, &rec.MatchedRule, &rec.Model, &fromOverride); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Verdict = domain.Classification(verdict)
		rec.FromOverride = fromOverride == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes every stored record.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM generations")
	return err
}

// ExportJSON writes every record to dest as JSON lines.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
	if err != nil {
		return err
	}
	return writeJSONL(dest, records)
}

// Path returns the database location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// stamp fills the identifying fields a fresh record lacks.
func stamp(record domain.GenerationRecord) domain.GenerationRecord {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	return record
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryStore = (*SQLiteStore)(nil)
