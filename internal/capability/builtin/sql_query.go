package builtin

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"factotum/internal/capability"
	"factotum/internal/logging"
)

// maxQueryRows caps the number of rows returned inline to the caller.
const maxQueryRows = 1000

// RunSQLQuery executes a quoted SQL statement against a SQLite database file
// inside the sandbox.
type RunSQLQuery struct {
	logger logging.Logger
}

func NewRunSQLQuery(cfg Config) *RunSQLQuery {
	return &RunSQLQuery{logger: cfg.Logger}
}

func (r *RunSQLQuery) Descriptor() capability.Descriptor {
	return capability.Descriptor{
		Name:        "run_sql_query",
		Description: "Runs a SQL statement against a SQLite database file.",
		PathParams:  []string{"database"},
		Rules: []capability.Rule{
			capability.MustRule("query", `query ["']([^"']+)["']`, true, nil, capability.TypeString),
			capability.MustRule("database", `(?:on|against|in) (?:the )?(?:database )?([\w./-]+\.(?:db|sqlite|sqlite3))`, true, nil, capability.TypeString),
		},
	}
}

func (r *RunSQLQuery) Execute(ctx context.Context, args map[string]any) (any, error) {
	query := args["query"].(string)
	path := args["database"].(string)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if isRowReturning(query) {
		return r.runQuery(ctx, db, query)
	}
	return r.runExec(ctx, db, query)
}

func (r *RunSQLQuery) runQuery(ctx context.Context, db *sql.DB, query string) (any, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var records []map[string]any
	truncated := false
	for rows.Next() {
		if len(records) >= maxQueryRows {
			truncated = true
			break
		}
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	r.logger.Info("run_sql_query: returned %d rows", len(records))
	result := map[string]any{
		"columns":   columns,
		"rows":      records,
		"row_count": len(records),
	}
	if truncated {
		result["truncated"] = true
	}
	return result, nil
}

func (r *RunSQLQuery) runExec(ctx context.Context, db *sql.DB, query string) (any, error) {
	res, err := db.ExecContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = -1
	}
	r.logger.Info("run_sql_query: %d rows affected", affected)
	return map[string]any{"rows_affected": affected}, nil
}

func isRowReturning(query string) bool {
	head := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(head, "SELECT") ||
		strings.HasPrefix(head, "WITH") ||
		strings.HasPrefix(head, "PRAGMA")
}
