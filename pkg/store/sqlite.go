package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/summarizer"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS summaries (
	id                 TEXT PRIMARY KEY,
	request_id         TEXT NOT NULL DEFAULT '',
	github_pr_url      TEXT NOT NULL,
	jira_ticket_id     TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL,
	sections           TEXT NOT NULL,
	error              TEXT NOT NULL DEFAULT '',
	processing_time_ms INTEGER,
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(created_at);
`

const (
	selectColumns      = `id, request_id, github_pr_url, jira_ticket_id, status, sections, error, processing_time_ms, created_at`
	selectStatusQuery  = `SELECT status FROM summaries WHERE id = ?`
	selectSummaryQuery = `SELECT ` + selectColumns + ` FROM summaries WHERE id = ?`
	listSummariesQuery = `SELECT ` + selectColumns + ` FROM summaries ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	countQuery         = `SELECT COUNT(*) FROM summaries`
	insertQuery        = `INSERT INTO summaries (id, request_id, github_pr_url, jira_ticket_id, status, sections, error, processing_time_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	updateQuery = `UPDATE summaries SET request_id = ?, github_pr_url = ?, jira_ticket_id = ?, status = ?, sections = ?, error = ?,
		processing_time_ms = ?, updated_at = ? WHERE id = ?`
	updateStatusQuery = `UPDATE summaries SET status = ?, error = ?, updated_at = ? WHERE id = ?`
)

// SQLiteStore is a Store backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use MemoryPath for a throwaway store.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, prserrors.NewStoreError("open", "", "create directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, prserrors.NewStoreError("open", "", "open database", err)
	}
	// A single connection serializes writers and keeps :memory: databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, prserrors.NewStoreError("open", "", "apply schema", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, sum *summarizer.PRSummary) error {
	if sum == nil || sum.ID == "" {
		return prserrors.NewStoreError("save", "", "summary id is required", nil)
	}

	sections, err := json.Marshal(sum.Sections)
	if err != nil {
		return prserrors.NewStoreError("save", sum.ID, "encode sections", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return prserrors.NewStoreError("save", sum.ID, "begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(time.Now())

	var current string
	switch err := tx.QueryRowContext(ctx, selectStatusQuery, sum.ID).Scan(&current); {
	case prserrors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, insertQuery,
			sum.ID, sum.RequestID, sum.GitHubPRURL, sum.JiraTicketID, string(sum.Status),
			string(sections), sum.Error, nullInt(sum.ProcessingTimeMS), formatTime(sum.CreatedAt), now)
		if err != nil {
			return prserrors.NewStoreError("save", sum.ID, "insert", err)
		}
	case err != nil:
		return prserrors.NewStoreError("save", sum.ID, "read status", err)
	default:
		from := summarizer.ProcessingStatus(current)
		if from != sum.Status && !from.CanTransition(sum.Status) {
			return invalidTransition("save", sum.ID, from, sum.Status)
		}
		_, err = tx.ExecContext(ctx, updateQuery,
			sum.RequestID, sum.GitHubPRURL, sum.JiraTicketID, string(sum.Status),
			string(sections), sum.Error, nullInt(sum.ProcessingTimeMS), now, sum.ID)
		if err != nil {
			return prserrors.NewStoreError("save", sum.ID, "update", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return prserrors.NewStoreError("save", sum.ID, "commit", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*summarizer.PRSummary, error) {
	sum, err := scanSummary(s.db.QueryRowContext(ctx, selectSummaryQuery, id))
	if prserrors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get", id)
	}
	if err != nil {
		return nil, prserrors.NewStoreError("get", id, "query", err)
	}
	return sum, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*summarizer.PRSummary, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, prserrors.NewStoreError("list", "", "count", err)
	}

	rows, err := s.db.QueryContext(ctx, listSummariesQuery, limit, offset)
	if err != nil {
		return nil, 0, prserrors.NewStoreError("list", "", "query", err)
	}
	defer rows.Close()

	summaries := make([]*summarizer.PRSummary, 0, limit)
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, 0, prserrors.NewStoreError("list", "", "scan", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, prserrors.NewStoreError("list", "", "iterate", err)
	}

	return summaries, total, nil
}

// UpdateStatus implements Store.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status summarizer.ProcessingStatus, errMsg string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return prserrors.NewStoreError("update_status", id, "begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, selectStatusQuery, id).Scan(&current)
	if prserrors.Is(err, sql.ErrNoRows) {
		return notFound("update_status", id)
	}
	if err != nil {
		return prserrors.NewStoreError("update_status", id, "read status", err)
	}

	if from := summarizer.ProcessingStatus(current); !from.CanTransition(status) {
		return invalidTransition("update_status", id, from, status)
	}

	if _, err := tx.ExecContext(ctx, updateStatusQuery, string(status), errMsg, formatTime(time.Now()), id); err != nil {
		return prserrors.NewStoreError("update_status", id, "update", err)
	}

	if err := tx.Commit(); err != nil {
		return prserrors.NewStoreError("update_status", id, "commit", err)
	}
	return nil
}

// Ping implements Store.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*summarizer.PRSummary, error) {
	var (
		sum       summarizer.PRSummary
		status    string
		sections  string
		procMS    sql.NullInt64
		createdAt string
	)
	if err := row.Scan(&sum.ID, &sum.RequestID, &sum.GitHubPRURL, &sum.JiraTicketID,
		&status, &sections, &sum.Error, &procMS, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(sections), &sum.Sections); err != nil {
		return nil, prserrors.Wrap(err, "decode sections")
	}
	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, prserrors.Wrap(err, "parse created_at")
	}

	sum.Status = summarizer.ProcessingStatus(status)
	sum.CreatedAt = created
	if procMS.Valid {
		ms := procMS.Int64
		sum.ProcessingTimeMS = &ms
	}
	return &sum, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
