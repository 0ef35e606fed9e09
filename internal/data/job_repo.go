// Package data provides the durable storage adapters backing the
// transmission queue: an embedded SQLite job store and an append-only
// audit log file.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sergejparity/e-invoice/internal/domain/model"
)

// JobRepo persists job records and payloads in an embedded SQLite database.
// Records and payloads live in two key-value tables keyed by job id, each
// holding one JSON document per row. A created_at column on job_records is
// denormalized from the record for newest-first listing.
type JobRepo struct {
	db           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// JobRepoOptions configures a JobRepo.
type JobRepoOptions struct {
	// Path is the SQLite database file path.
	Path string

	TimeProvider TimeProvider
	Logger       *slog.Logger
}

const jobStoreSchema = `
CREATE TABLE IF NOT EXISTS job_records (
	job_id     TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_job_records_created_at ON job_records(created_at);

CREATE TABLE IF NOT EXISTS job_payloads (
	job_id TEXT PRIMARY KEY,
	data   TEXT NOT NULL
);
`

// NewJobRepo opens (creating if needed) the job store at the given path.
func NewJobRepo(opts JobRepoOptions) (*JobRepo, error) {
	if opts.Path == "" {
		return nil, errors.New("job store path is required")
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = &RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", opts.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping job store: %w", err)
	}
	if _, err := db.Exec(jobStoreSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize job store schema: %w", err)
	}

	return &JobRepo{
		db:           db,
		timeProvider: opts.TimeProvider,
		logger:       opts.Logger,
	}, nil
}

// Close closes the underlying database.
func (r *JobRepo) Close() error {
	return r.db.Close()
}

// CreateJob persists a job record and its payload in one transaction.
// Either both rows are stored or neither is.
func (r *JobRepo) CreateJob(ctx context.Context, rec *model.JobRecord, payload *model.JobPayload) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode job record: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode job payload: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create job: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO job_records (job_id, data, created_at) VALUES (?, ?, ?)`,
		rec.JobID, string(recJSON), rec.CreatedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert job record: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO job_payloads (job_id, data) VALUES (?, ?)`,
		rec.JobID, string(payloadJSON),
	); err != nil {
		return fmt.Errorf("insert job payload: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job record by id.
func (r *JobRepo) GetJob(ctx context.Context, jobID string) (*model.JobRecord, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM job_records WHERE job_id = ?`, jobID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("query job record: %w", err)
	}
	return decodeRecord(raw)
}

// GetPayload retrieves a job payload by id.
func (r *JobRepo) GetPayload(ctx context.Context, jobID string) (*model.JobPayload, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM job_payloads WHERE job_id = ?`, jobID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPayloadNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("query job payload: %w", err)
	}
	var payload model.JobPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode job payload: %w", err)
	}
	return &payload, nil
}

// UpdateJob performs a single-key read-modify-write on a job record. The
// mutate callback runs inside the transaction and may reject the update by
// returning an error, in which case nothing is written. UpdatedAt is
// refreshed on every successful update; updating an unknown id returns
// model.ErrJobNotFound without mutating the store.
func (r *JobRepo) UpdateJob(
	ctx context.Context,
	jobID string,
	mutate func(*model.JobRecord) error,
) (*model.JobRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update job: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM job_records WHERE job_id = ?`, jobID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("query job record: %w", err)
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}
	if err := mutate(rec); err != nil {
		return nil, err
	}
	rec.UpdatedAt = r.timeProvider.Now().UTC()

	recJSON, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode job record: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE job_records SET data = ? WHERE job_id = ?`,
		string(recJSON), jobID,
	); err != nil {
		return nil, fmt.Errorf("update job record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update job: %w", err)
	}
	return rec, nil
}

// ListJobs returns all known job records, newest first by created_at.
func (r *JobRepo) ListJobs(ctx context.Context) ([]*model.JobRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM job_records ORDER BY created_at DESC, job_id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list job records: %w", err)
	}
	defer rows.Close()

	var out []*model.JobRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job records: %w", err)
	}
	return out, nil
}

func decodeRecord(raw string) (*model.JobRecord, error) {
	var rec model.JobRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode job record: %w", err)
	}
	return &rec, nil
}
