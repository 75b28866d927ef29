package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/mchat/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// SQLite keeps results in a private in-memory SQLite database. It lives
// and dies with the process; nothing is written to disk.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a fresh in-memory database and creates the schema.
func NewSQLite() (*SQLite, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=OFF",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database connection, discarding every result.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the result stored under itemID, or nil when there is none.
func (s *SQLite) Get(ctx context.Context, itemID int) (*models.ItemResult, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT result FROM item_results WHERE item_id = ?`, itemID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item %d: %w", itemID, err)
	}

	var result models.ItemResult
	if err := json.Unmarshal([]byte(blob), &result); err != nil {
		return nil, fmt.Errorf("decode item %d: %w", itemID, err)
	}
	return &result, nil
}

// Put upserts the result stored under itemID.
func (s *SQLite) Put(ctx context.Context, itemID int, result *models.ItemResult) error {
	if result == nil {
		return ErrNilResult
	}
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode item %d: %w", itemID, err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO item_results (item_id, verdict, primary_ans, completed_at, result)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(item_id) DO UPDATE SET
				verdict = excluded.verdict,
				primary_ans = excluded.primary_ans,
				completed_at = excluded.completed_at,
				result = excluded.result`,
			itemID, string(result.Verdict), result.Primary.String(), result.CompletedAt, string(blob))
		if err != nil {
			return fmt.Errorf("upsert item %d: %w", itemID, err)
		}
		return nil
	})
}

// Delete removes the result stored under itemID. Deleting a missing key is not an error.
func (s *SQLite) Delete(ctx context.Context, itemID int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM item_results WHERE item_id = ?`, itemID); err != nil {
			return fmt.Errorf("delete item %d: %w", itemID, err)
		}
		return nil
	})
}

// Keys returns the stored item ids in ascending order.
func (s *SQLite) Keys(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id FROM item_results ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer rows.Close()

	var keys []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, id)
	}
	return keys, rows.Err()
}

func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
