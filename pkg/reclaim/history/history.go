// Package history persists a record of past scans and executions in an
// embedded Badger database.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Kind distinguishes the two record types.
type Kind string

const (
	// KindScan records a completed scan and detection pass.
	KindScan Kind = "scan"
	// KindExecution records a completed plan execution.
	KindExecution Kind = "execution"
)

// ErrNotFound indicates no record exists for the given ID.
var ErrNotFound = errors.New("history record not found")

const recordPrefix = "run:"

// Record is one entry in the run history.
type Record struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
	Root       string    `json:"root,omitempty"`
	PlanFile   string    `json:"plan_file,omitempty"`
	Entries    int       `json:"entries,omitempty"`
	Detections int       `json:"detections,omitempty"`
	Operations int       `json:"operations,omitempty"`
	Failed     int       `json:"failed,omitempty"`
	SpaceFreed int64     `json:"space_freed,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}

// Store is a Badger-backed history store. Keys are ordered by timestamp
// so listing newest-first is a reverse prefix scan.
type Store struct {
	db *badger.DB
}

// Open opens or creates the history store at the given directory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores a record, assigning an ID and timestamp when unset.
func (s *Store) Append(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encode history record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.Timestamp, rec.ID), data)
	})
	if err != nil {
		return Record{}, fmt.Errorf("store history record: %w", err)
	}

	return rec, nil
}

// List returns records newest-first. A limit of 0 returns everything.
func (s *Store) List(limit int) ([]Record, error) {
	var records []Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(recordPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts just past the prefix range.
		seek := append([]byte(recordPrefix), 0xff)
		for it.Seek(seek); it.Valid(); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode history record: %w", err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Get returns the record with the given ID.
func (s *Store) Get(id string) (Record, error) {
	records, err := s.List(0)
	if err != nil {
		return Record{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Prune removes records older than the cutoff and reports how many were
// deleted.
func (s *Store) Prune(cutoff time.Time) (int, error) {
	var stale [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(recordPrefix)

		boundary := recordKey(cutoff, "")

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(recordPrefix)); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if string(key) >= string(boundary) {
				break
			}
			stale = append(stale, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(stale) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("prune history: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}

	return len(stale), nil
}

// recordKey orders records chronologically. RFC 3339 with fixed
// fractional digits sorts lexicographically.
func recordKey(ts time.Time, id string) []byte {
	return []byte(recordPrefix + ts.UTC().Format("2006-01-02T15:04:05.000000000Z") + ":" + id)
}
