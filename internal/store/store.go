// Package store persists taskdeck documents in SQLite, modeled after a
// hosted document database: JSON documents grouped into collections, with
// equality queries, single-document read/write, batched multi-writes, and
// live collection subscriptions.
//
// Writes replace whole documents. Concurrent read-modify-write cycles
// against the same document are last-write-wins; nested-array updates can
// drop a concurrent edit. See the lost-update test in projects_test.go.
//
// The database is stored at ~/.taskdeck/taskdeck.db by default.
// Use Open() to connect and Init() to create the schema.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	_ "modernc.org/sqlite"
)

// Collection names, matching the backend the mobile client talks to.
const (
	ColDailyTasks = "DailyTasks"
	ColProjects   = "projects"
	ColMessages   = "messages"
	ColUsers      = "users"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Doc is a raw JSON document with its identifier.
type Doc struct {
	ID   string
	Data []byte
}

// Write is one entry in a batched multi-write. Delete removes the
// document instead of replacing it.
type Write struct {
	Collection string
	ID         string
	Data       []byte
	Delete     bool
}

// Store wraps a SQL database connection with document operations and
// collection watchers.
type Store struct {
	*sql.DB

	log *slog.Logger

	mu       sync.Mutex
	watchers map[string][]chan []Doc
}

// DefaultPath returns the default database path (~/.taskdeck/taskdeck.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".taskdeck", "taskdeck.db"), nil
}

// Open opens or creates the database at the given path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Store{
		DB:       db,
		log:      slog.New(slog.NewTextHandler(os.Stderr, nil)),
		watchers: make(map[string][]chan []Doc),
	}, nil
}

// Init creates the schema.
func (s *Store) Init() error {
	if _, err := s.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// GetDoc returns the raw JSON of a single document.
func (s *Store) GetDoc(collection, id string) ([]byte, error) {
	var data string
	err := s.QueryRow(`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return []byte(data), nil
}

// PutDoc stores a document, replacing any existing content wholesale.
// The last writer wins; there is no version check.
func (s *Store) PutDoc(collection, id string, data []byte) error {
	_, err := s.Exec(`
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, id, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	s.notify(collection)
	return nil
}

// DeleteDoc removes a document.
func (s *Store) DeleteDoc(collection, id string) error {
	result, err := s.Exec(`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	s.notify(collection)
	return nil
}

// ListDocs returns every document in a collection.
func (s *Store) ListDocs(collection string) ([]Doc, error) {
	rows, err := s.Query(`SELECT id, data FROM documents WHERE collection = ? ORDER BY id`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Doc
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, Doc{ID: id, Data: []byte(data)})
	}
	return docs, rows.Err()
}

// QueryEqual returns the documents in a collection whose JSON field at
// path equals value.
func (s *Store) QueryEqual(collection, path, value string) ([]Doc, error) {
	docs, err := s.ListDocs(collection)
	if err != nil {
		return nil, err
	}
	var matched []Doc
	for _, d := range docs {
		if gjson.GetBytes(d.Data, path).String() == value {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

// WriteBatch applies several writes in a single transaction. Either every
// write commits or none do; watchers are notified once per touched
// collection after commit.
func (s *Store) WriteBatch(writes []Write) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, w := range writes {
		if w.Delete {
			if _, err := tx.Exec(`DELETE FROM documents WHERE collection = ? AND id = ?`,
				w.Collection, w.ID); err != nil {
				return fmt.Errorf("failed to delete %s/%s in batch: %w", w.Collection, w.ID, err)
			}
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO documents (collection, id, data, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
			w.Collection, w.ID, string(w.Data), now); err != nil {
			return fmt.Errorf("failed to write %s/%s in batch: %w", w.Collection, w.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	touched := map[string]bool{}
	for _, w := range writes {
		if !touched[w.Collection] {
			touched[w.Collection] = true
			s.notify(w.Collection)
		}
	}
	return nil
}

// withServerTimestamp stamps the named field with the current server time,
// mirroring server-assigned timestamps on write.
func withServerTimestamp(data []byte, field string) ([]byte, error) {
	stamped, err := sjson.SetBytes(data, field, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to stamp %s: %w", field, err)
	}
	return stamped, nil
}

// Watch subscribes to a collection. Every committed write pushes the full
// document list to the channel; there is no incremental diffing. The
// returned func cancels the subscription.
func (s *Store) Watch(collection string) (<-chan []Doc, func()) {
	ch := make(chan []Doc, 8)

	s.mu.Lock()
	s.watchers[collection] = append(s.watchers[collection], ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		chans := s.watchers[collection]
		for i, c := range chans {
			if c == ch {
				s.watchers[collection] = append(chans[:i], chans[i+1:]...)
				close(c)
				return
			}
		}
	}
	return ch, cancel
}

// notify delivers the current collection snapshot to every watcher. Slow
// consumers miss intermediate snapshots rather than blocking writers.
func (s *Store) notify(collection string) {
	s.mu.Lock()
	chans := append([]chan []Doc(nil), s.watchers[collection]...)
	s.mu.Unlock()

	if len(chans) == 0 {
		return
	}

	docs, err := s.ListDocs(collection)
	if err != nil {
		s.log.Error("watch snapshot failed", "collection", collection, "error", err)
		return
	}
	for _, ch := range chans {
		select {
		case ch <- docs:
		default:
			s.log.Warn("watcher lagging, snapshot dropped", "collection", collection)
		}
	}
}
