// Package history persists completed transmissions to an on-disk log.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Entry is one completed (or annotated) transmission.
type Entry struct {
	Timestamp    time.Time `json:"timestamp"`
	Mode         string    `json:"mode"`
	Transcript   string    `json:"transcript"`
	Response     string    `json:"response,omitempty"`
	Annotation   string    `json:"annotation,omitempty"`
	Transcriber  string    `json:"transcriber,omitempty"`
	Model        string    `json:"model,omitempty"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
	Duration     float64   `json:"duration_seconds,omitempty"`
}

// Log stores entries keyed by timestamp so Recent can walk them in
// reverse insertion order.
type Log struct {
	db *badger.DB
}

func Open(dir string) (*Log, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	return &Log{db: db}, nil
}

func entryKey(t time.Time) []byte {
	return []byte(fmt.Sprintf("entry:%020d", t.UnixNano()))
}

func (l *Log) Append(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(e.Timestamp), val)
	})
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) ([]Entry, error) {
	var entries []Entry
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte("entry:")
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration must seek past the last key in the prefix.
		for it.Seek([]byte("entry:~")); it.Valid() && len(entries) < n; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var e Entry
				if err := json.Unmarshal(val, &e); err != nil {
					return err
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}
