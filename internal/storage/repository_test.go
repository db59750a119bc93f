package storage

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"scontrini/internal/core"

	_ "modernc.org/sqlite"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "receipts.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveAndGetReceipt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	items := []core.LineItem{
		core.NewLineItem("Sushi Set", 1500),
		core.NewLineItem("Green Tea", 150),
		core.NewLineItem("Mochi", 300),
	}
	id, err := repo.SaveReceipt(ctx, core.Receipt{
		Merchant: "Tokyo Store",
		Currency: "JPY",
		Date:     "2024-03-01",
		// TotalAmount supplied by the caller is ignored
		TotalAmount: 999999,
	}, items)
	if err != nil {
		t.Fatalf("save receipt: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	stored, err := repo.GetReceipt(ctx, id)
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if stored.Merchant != "Tokyo Store" || stored.Currency != "JPY" || stored.Date != "2024-03-01" {
		t.Errorf("unexpected receipt: %+v", stored.Receipt)
	}
	if math.Abs(stored.TotalAmount-1950) > 1e-9 {
		t.Errorf("total_amount = %v, want 1950 (derived from items)", stored.TotalAmount)
	}
	if len(stored.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(stored.Items))
	}
	if stored.Items[0].Name != "Sushi Set" || stored.Items[0].Price != 1500 {
		t.Errorf("unexpected first item: %+v", stored.Items[0])
	}
}

func TestSaveReceiptDefaultsCurrency(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.SaveReceipt(ctx, core.Receipt{Merchant: "Corner Shop"},
		[]core.LineItem{core.NewLineItem("Soap", 2.49)})
	if err != nil {
		t.Fatalf("save receipt: %v", err)
	}

	stored, err := repo.GetReceipt(ctx, id)
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if stored.Currency != core.DefaultCurrency {
		t.Errorf("currency = %q, want %q", stored.Currency, core.DefaultCurrency)
	}
}

func TestSaveReceiptRejectsZeroItems(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.SaveReceipt(ctx, core.Receipt{Merchant: "Empty"}, nil); err == nil {
		t.Fatal("expected error for zero items")
	}

	receipts, err := repo.ListReceipts(ctx, 10)
	if err != nil {
		t.Fatalf("list receipts: %v", err)
	}
	if len(receipts) != 0 {
		t.Fatalf("no row must be written for a rejected save, got %d", len(receipts))
	}
}

func TestReceiptIDsAreMonotonic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		id, err := repo.SaveReceipt(ctx, core.Receipt{Merchant: "Shop"},
			[]core.LineItem{core.NewLineItem("Thing", 1)})
		if err != nil {
			t.Fatalf("save receipt %d: %v", i, err)
		}
		if id <= last {
			t.Fatalf("ids must be monotonic: got %d after %d", id, last)
		}
		last = id
	}
}

func TestListReceiptsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, merchant := range []string{"First", "Second", "Third"} {
		if _, err := repo.SaveReceipt(ctx, core.Receipt{Merchant: merchant},
			[]core.LineItem{core.NewLineItem("Thing", 1)}); err != nil {
			t.Fatalf("save receipt: %v", err)
		}
	}

	receipts, err := repo.ListReceipts(ctx, 2)
	if err != nil {
		t.Fatalf("list receipts: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(receipts))
	}
	if receipts[0].Merchant != "Third" || receipts[1].Merchant != "Second" {
		t.Errorf("unexpected order: %v", receipts)
	}
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "receipts.db")

	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	id, err := repo.SaveReceipt(context.Background(), core.Receipt{Merchant: "Shop"},
		[]core.LineItem{core.NewLineItem("Thing", 1)})
	if err != nil {
		t.Fatalf("save receipt: %v", err)
	}
	repo.Close()

	// Reopening runs the schema pass again against an up-to-date database.
	repo, err = NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer repo.Close()

	stored, err := repo.GetReceipt(context.Background(), id)
	if err != nil {
		t.Fatalf("get receipt after reopen: %v", err)
	}
	if stored.Merchant != "Shop" {
		t.Errorf("unexpected receipt after reopen: %+v", stored.Receipt)
	}
}

func TestMigrationAddsMissingColumns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	// Build a pre-migration database lacking address and currency.
	legacy, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	if _, err := legacy.Exec(`CREATE TABLE receipts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		merchant TEXT,
		date TEXT,
		total_amount REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if _, err := legacy.Exec(
		`INSERT INTO receipts (merchant, date, total_amount) VALUES (?, ?, ?)`,
		"Old Shop", "2020-01-01", 12.34); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}
	legacy.Close()

	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open repository against legacy db: %v", err)
	}
	defer repo.Close()

	columns, err := repo.tableColumns(context.Background(), "receipts")
	if err != nil {
		t.Fatalf("table columns: %v", err)
	}
	for _, want := range []string{"address", "currency"} {
		if !columns[want] {
			t.Errorf("column %q not added by migration", want)
		}
	}

	// Existing row count and values are untouched; the new currency column
	// carries its default.
	var (
		count    int
		merchant string
		total    float64
		currency sql.NullString
	)
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM receipts`).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("row count changed during migration: %d", count)
	}
	if err := repo.db.QueryRow(
		`SELECT merchant, total_amount, currency FROM receipts`).Scan(&merchant, &total, &currency); err != nil {
		t.Fatalf("read legacy row: %v", err)
	}
	if merchant != "Old Shop" || total != 12.34 {
		t.Errorf("legacy values altered: merchant=%q total=%v", merchant, total)
	}
	if currency.Valid && currency.String != "USD" && currency.String != "" {
		t.Errorf("unexpected currency on legacy row: %q", currency.String)
	}
}

func TestConcurrentSaves(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const savers = 8
	errs := make(chan error, savers)
	for i := 0; i < savers; i++ {
		go func() {
			_, err := repo.SaveReceipt(ctx, core.Receipt{Merchant: "Busy Shop"},
				[]core.LineItem{core.NewLineItem("Thing", 1), core.NewLineItem("Other", 2)})
			errs <- err
		}()
	}
	for i := 0; i < savers; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent save: %v", err)
		}
	}

	receipts, err := repo.ListReceipts(ctx, savers+1)
	if err != nil {
		t.Fatalf("list receipts: %v", err)
	}
	if len(receipts) != savers {
		t.Fatalf("expected %d receipts, got %d", savers, len(receipts))
	}
	for _, r := range receipts {
		if r.TotalAmount != 3 {
			t.Errorf("receipt %d total = %v, want 3", r.ID, r.TotalAmount)
		}
	}
}
