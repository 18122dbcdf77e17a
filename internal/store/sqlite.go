package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens or creates a SQLite database at path. ":memory:" gives a
// private in-memory database.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db, goose.DialectSQLite3, "sqlite")
}

// SaveRecord inserts rec, assigning an ID and creation time when unset.
func (s *SQLiteDB) SaveRecord(ctx context.Context, rec *StoredRecord) error {
	resultJSON, err := prepare(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Game, rec.ParamsJSON, resultJSON,
		rec.Record.Hash, rec.Record.Seed, rec.Record.Timestamp, rec.Record.Signature,
		rec.Token, rec.EngineVersion, rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// GetRecord retrieves a record by ID
func (s *SQLiteDB) GetRecord(ctx context.Context, id uuid.UUID) (*StoredRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id.String())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// ListRecords returns records newest first, optionally filtered by game.
func (s *SQLiteDB) ListRecords(ctx context.Context, query RecordsQuery) (*RecordsList, error) {
	query = query.normalized()

	whereClause := ""
	args := []any{}
	if query.Game != "" {
		whereClause = "WHERE game = ?"
		args = append(args, query.Game)
	}

	var totalCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	args = append(args, query.PerPage, query.offset())
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records `+whereClause+`
		ORDER BY created_at_ms DESC, id
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return newRecordsList(query, totalCount, records), nil
}
