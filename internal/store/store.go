package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrRecordNotFound reports a miss on a (collection, id) pair.
var ErrRecordNotFound = errors.New("record not found")

// Record is one schemaless entry in a keyed collection. The admin surface
// owns the shape; the store only guarantees identity and ordering.
type Record = map[string]any

// Store persists keyed collections of JSON records in insertion order.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) List(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM collections WHERE collection = ? ORDER BY rowid`, collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", collection, err)
		}
		var record Record
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("decoding %s record: %w", collection, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) Get(ctx context.Context, collection, id string) (Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM collections WHERE collection = ? AND record_id = ?`, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, collection, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}

	var record Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	return record, nil
}

func (s *Store) Insert(ctx context.Context, collection, id string, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections (collection, record_id, data) VALUES (?, ?, ?)
		 ON CONFLICT (collection, record_id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		collection, id, string(data))
	if err != nil {
		return fmt.Errorf("inserting %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update finds a record and replaces it with merge's result. The merge
// callback receives the current record and returns the next one; the record
// id cannot be changed through it.
func (s *Store) Update(ctx context.Context, collection, id string, merge func(Record) Record) (Record, error) {
	current, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	next := merge(current)
	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE collections SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND record_id = ?`,
		string(data), collection, id)
	if err != nil {
		return nil, fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	return next, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM collections WHERE collection = ? AND record_id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, collection, id)
	}
	return nil
}

// ReplaceAll swaps a collection's entire contents in one transaction. ids
// maps each record to its identity and must align with records.
func (s *Store) ReplaceAll(ctx context.Context, collection string, ids []string, records []Record) error {
	if len(ids) != len(records) {
		return fmt.Errorf("replacing %s: %d ids for %d records", collection, len(ids), len(records))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replacing %s: %w", collection, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE collection = ?`, collection); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}
	for i, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encoding %s/%s: %w", collection, ids[i], err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collections (collection, record_id, data) VALUES (?, ?, ?)`,
			collection, ids[i], string(data)); err != nil {
			return fmt.Errorf("inserting %s/%s: %w", collection, ids[i], err)
		}
	}
	return tx.Commit()
}
