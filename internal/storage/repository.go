// Package storage persists receipts and their line items in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"scontrini/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable receipt store. Safe for concurrent use:
// every save is one transaction, so a partial multi-row insert is never
// visible to another invocation.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// reconciles the schema.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Single writer connection. SQLite allows one writer at a time anyway;
	// funneling everything through one connection turns concurrent saves
	// into queued transactions instead of SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return repo, nil
}

// Close closes the underlying database.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// StoredReceipt is a persisted receipt together with its line items.
type StoredReceipt struct {
	core.Receipt
	Items []core.LineItem
}

// SaveReceipt inserts one receipt row plus one items row per line item in a
// single transaction and returns the assigned receipt id. The stored total
// is derived from the item prices; any caller-supplied total is ignored. A
// failed item insert rolls the receipt row back too, so a receipt with zero
// items can never appear through this path.
func (r *SQLiteRepository) SaveReceipt(ctx context.Context, receipt core.Receipt, items []core.LineItem) (int64, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("receipt has no items")
	}

	total := core.Total(items)
	currency := receipt.NormalizedCurrency()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO receipts (merchant, address, date, total_amount, currency)
		 VALUES (?, ?, ?, ?, ?)`,
		receipt.Merchant, nullable(receipt.Address), nullable(receipt.Date), total, currency)
	if err != nil {
		return 0, fmt.Errorf("insert receipt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("receipt id: %w", err)
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (receipt_id, name, price) VALUES (?, ?, ?)`,
			id, item.Name, item.Price); err != nil {
			return 0, fmt.Errorf("insert item %q: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit receipt: %w", err)
	}

	slog.InfoContext(ctx, "Receipt saved",
		"id", id,
		"merchant", receipt.Merchant,
		"items", len(items),
		"total", total,
		"currency", currency)

	return id, nil
}

// GetReceipt loads one receipt with its items.
func (r *SQLiteRepository) GetReceipt(ctx context.Context, id int64) (*StoredReceipt, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, merchant, address, date, total_amount, currency, created_at
		 FROM receipts WHERE id = ?`, id)

	stored, err := scanReceipt(row)
	if err != nil {
		return nil, fmt.Errorf("get receipt %d: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, price FROM items WHERE receipt_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get items for receipt %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item core.LineItem
		if err := rows.Scan(&item.Name, &item.Price); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Count = 1
		stored.Items = append(stored.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return stored, nil
}

// ListReceipts returns the most recent receipts, newest first, without their
// items.
func (r *SQLiteRepository) ListReceipts(ctx context.Context, limit int) ([]core.Receipt, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, merchant, address, date, total_amount, currency, created_at
		 FROM receipts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []core.Receipt
	for rows.Next() {
		stored, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		receipts = append(receipts, stored.Receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}

	return receipts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*StoredReceipt, error) {
	var (
		stored    StoredReceipt
		address   sql.NullString
		date      sql.NullString
		createdAt sql.NullString
	)
	if err := row.Scan(&stored.ID, &stored.Merchant, &address, &date,
		&stored.TotalAmount, &stored.Currency, &createdAt); err != nil {
		return nil, err
	}
	stored.Address = address.String
	stored.Date = date.String
	if createdAt.Valid {
		if ts, err := time.Parse("2006-01-02 15:04:05", createdAt.String); err == nil {
			stored.CreatedAt = ts
		}
	}
	return &stored, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
