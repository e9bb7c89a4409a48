// Package history provides an opt-in SQLite journal of tool calls.
// The journal only records what callers already received; nothing reads it back to answer a call.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/homey-mcp/internal/logger"
	"github.com/comigor/homey-mcp/pkg/tools"
)

const schema = `CREATE TABLE IF NOT EXISTS tool_calls (
    id TEXT PRIMARY KEY,
    tool TEXT NOT NULL,
    arguments TEXT,
    is_error INTEGER NOT NULL,
    text TEXT,
    duration_ns INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);`

// Journal stores tool calls in SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}
	logger.L.Info("tool call journal initialized", "path", path)
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record persists one entry.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO tool_calls (id, tool, arguments, is_error, text, duration_ns, created_at) VALUES (?,?,?,?,?,?,?);`,
		e.ID, e.Tool, e.Arguments, e.IsError, e.Text, int64(e.Duration), e.CreatedAt.UnixNano())
	return err
}

// List returns up to limit entries, newest first. A limit <= 0 returns everything.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, tool, arguments, is_error, text, duration_ns, created_at FROM tool_calls ORDER BY created_at DESC, rowid DESC LIMIT ?;`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			args, text sql.NullString
			durationNS int64
			createdNS  int64
		)
		if err := rows.Scan(&e.ID, &e.Tool, &args, &e.IsError, &text, &durationNS, &createdNS); err != nil {
			return nil, err
		}
		e.Arguments = args.String
		e.Text = text.String
		e.Duration = time.Duration(durationNS)
		e.CreatedAt = time.Unix(0, createdNS).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// ObserveCall is a tools.Observer. Failures are logged, never surfaced to the caller.
func (j *Journal) ObserveCall(ctx context.Context, rec tools.CallRecord) {
	args, err := json.Marshal(rec.Arguments)
	if err != nil {
		args = []byte("null")
	}
	e := Entry{
		ID:        rec.ID,
		Tool:      rec.Tool,
		Arguments: string(args),
		IsError:   rec.IsError,
		Text:      rec.Text,
		Duration:  rec.Duration,
		CreatedAt: rec.StartedAt,
	}
	if err := j.Record(context.WithoutCancel(ctx), e); err != nil {
		logger.L.Error("failed to journal tool call", "id", rec.ID, "tool", rec.Tool, "error", err)
	}
}
