package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Schema evolution is additive reconciliation, not versioned scripts: the
// expected column set is diffed against the live table on every startup and
// missing columns are added in place. Adding a column never touches existing
// rows beyond filling in the declared default, and the whole pass is a no-op
// against an up-to-date database, so it is safe to run repeatedly.

const createReceiptsTable = `
CREATE TABLE IF NOT EXISTS receipts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	merchant TEXT,
	address TEXT,
	date TEXT,
	total_amount REAL,
	currency TEXT DEFAULT 'USD',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

const createItemsTable = `
CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	receipt_id INTEGER,
	name TEXT,
	price REAL,
	FOREIGN KEY (receipt_id) REFERENCES receipts (id)
)`

// expectedReceiptColumns lists columns that older databases may lack,
// together with the DDL used to add them. Order is fixed so repeated runs
// behave identically.
var expectedReceiptColumns = []struct {
	name string
	ddl  string
}{
	{"address", "ALTER TABLE receipts ADD COLUMN address TEXT"},
	{"currency", "ALTER TABLE receipts ADD COLUMN currency TEXT DEFAULT 'USD'"},
}

func (r *SQLiteRepository) initSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReceiptsTable); err != nil {
		return fmt.Errorf("create receipts table: %w", err)
	}

	if err := r.reconcileReceiptColumns(ctx); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, createItemsTable); err != nil {
		return fmt.Errorf("create items table: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) reconcileReceiptColumns(ctx context.Context) error {
	live, err := r.tableColumns(ctx, "receipts")
	if err != nil {
		return err
	}

	for _, col := range expectedReceiptColumns {
		if live[col.name] {
			continue
		}
		slog.InfoContext(ctx, "Migrating database: adding column to receipts table",
			"column", col.name)
		if _, err := r.db.ExecContext(ctx, col.ddl); err != nil {
			return fmt.Errorf("add column %s: %w", col.name, err)
		}
	}

	return nil
}

func (r *SQLiteRepository) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("table info for %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info: %w", err)
	}

	return columns, nil
}
