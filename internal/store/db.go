package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MJE43/pf-fairness-engine/internal/fairness"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// DB represents the database interface
type DB interface {
	Close() error
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	SaveRecord(ctx context.Context, rec *StoredRecord) error
	GetRecord(ctx context.Context, id uuid.UUID) (*StoredRecord, error)
	ListRecords(ctx context.Context, query RecordsQuery) (*RecordsList, error)
}

// StoredRecord is a generated record together with the request that produced it.
type StoredRecord struct {
	ID            uuid.UUID       `json:"id"`
	Game          string          `json:"game"`
	ParamsJSON    string          `json:"params_json"`
	Record        fairness.Record `json:"record"`
	Token         string          `json:"token"`
	EngineVersion string          `json:"engine_version"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RecordsQuery represents query parameters for listing records
type RecordsQuery struct {
	Game    string `json:"game,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// RecordsList represents a paginated records response
type RecordsList struct {
	Records    []StoredRecord `json:"records"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

const (
	defaultPerPage = 50
	maxPerPage     = 500
)

func (q RecordsQuery) normalized() RecordsQuery {
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return q
}

func (q RecordsQuery) offset() int { return (q.Page - 1) * q.PerPage }

func newRecordsList(q RecordsQuery, total int, records []StoredRecord) *RecordsList {
	if records == nil {
		records = []StoredRecord{}
	}
	return &RecordsList{
		Records:    records,
		TotalCount: total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: (total + q.PerPage - 1) / q.PerPage,
	}
}

// prepare fills in defaults before insert.
func prepare(rec *StoredRecord) (string, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.ParamsJSON == "" {
		rec.ParamsJSON = "{}"
	}
	result, err := json.Marshal(rec.Record.Result)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(result), nil
}

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

const recordColumns = `id, game, params_json, result_json, hash, seed, timestamp_ms, signature, token, engine_version, created_at_ms`

func scanRecord(row rowScanner) (*StoredRecord, error) {
	var (
		rec        StoredRecord
		resultJSON string
		createdMs  int64
	)
	err := row.Scan(&rec.ID, &rec.Game, &rec.ParamsJSON, &resultJSON,
		&rec.Record.Hash, &rec.Record.Seed, &rec.Record.Timestamp, &rec.Record.Signature,
		&rec.Token, &rec.EngineVersion, &createdMs)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Record.Result); err != nil {
		return nil, fmt.Errorf("invalid result for record %s: %w", rec.ID, err)
	}
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &rec, nil
}
