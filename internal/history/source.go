// Package history reads row versions from a temporal table pair: the current
// table plus its append-only "_history" twin holding closed-out versions.
//
// Every tracked table carries the bookkeeping columns period_start,
// version, changed_by and deleted_by maintained by the write path. The
// history twin has the identical shape, so one scan function serves both
// projections.
package history

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"markpart/internal/audit"
	"markpart/pkg/platform/sentinel"
)

// ScanFunc scans one row into a snapshot. The row layout is the table's
// entity columns followed by period_start, version, changed_by, deleted_by,
// in the column order given to NewTableSource.
type ScanFunc[T any] func(rows *sql.Rows) (audit.Snapshot[T], error)

// TableSource reads the union of current and historical row versions of one
// entity type. Construct once per table; missing temporal metadata (either
// table absent) is a fatal configuration error surfaced here, not per call.
type TableSource[T any] struct {
	db      *sql.DB
	table   string
	columns string
	scan    ScanFunc[T]
}

// NewTableSource verifies that both table and table_history exist before
// returning a usable source. columns is the comma-separated entity column
// list, excluding the bookkeeping columns.
func NewTableSource[T any](ctx context.Context, db *sql.DB, table, columns string, scan ScanFunc[T]) (*TableSource[T], error) {
	for _, name := range []string{table, table + "_history"} {
		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
			name,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("probe temporal table %s: %w", name, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: temporal table %s does not exist", sentinel.ErrMisconfigured, name)
		}
	}
	return &TableSource[T]{db: db, table: table, columns: columns, scan: scan}, nil
}

// Where binds a predicate, yielding an audit.Source for one entity. The
// condition uses positional placeholders ($1, $2, ...).
func (s *TableSource[T]) Where(condition string, args ...any) audit.Source[T] {
	return &boundSource[T]{source: s, condition: condition, args: args}
}

type boundSource[T any] struct {
	source    *TableSource[T]
	condition string
	args      []any
}

// ReadChanges returns the union of the live rows and every closed-out
// historical row matching the predicate, unordered. Zero matching rows yield
// an empty slice, not an error.
func (b *boundSource[T]) ReadChanges(ctx context.Context) ([]audit.Snapshot[T], error) {
	var current, historical []audit.Snapshot[T]

	// Both projections are independent bulk reads; fetch them in parallel.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		current, err = b.readProjection(gctx, b.source.table)
		return err
	})
	g.Go(func() (err error) {
		historical, err = b.readProjection(gctx, b.source.table+"_history")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(current, historical...), nil
}

func (b *boundSource[T]) readProjection(ctx context.Context, table string) ([]audit.Snapshot[T], error) {
	query := fmt.Sprintf(
		`SELECT %s, period_start, version, changed_by, deleted_by FROM %s WHERE %s`,
		b.source.columns, table, b.condition,
	)
	rows, err := b.source.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var snapshots []audit.Snapshot[T]
	for rows.Next() {
		snapshot, err := b.source.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return snapshots, nil
}
