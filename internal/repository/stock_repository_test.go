package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubExistsRow struct {
	itemOK, containerOK bool
	err                 error
}

func (r stubExistsRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*bool)) = r.itemOK
	*(dest[1].(*bool)) = r.containerOK
	return nil
}

type stubStockDB struct {
	row stubExistsRow
	tag string

	execs int
}

func (db *stubStockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execs++
	return pgconn.NewCommandTag(db.tag), nil
}

func (db *stubStockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (db *stubStockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.row
}

func TestRemoveStockForeignContainerReadsAsAbsent(t *testing.T) {
	// A container id from another tenant must surface as not found, never
	// as a stock shortfall.
	db := &stubStockDB{row: stubExistsRow{itemOK: true}}
	repo := NewStockRepository(db)

	err := repo.RemoveStock(context.Background(), "item-1", "container-b", "company-a", 5)
	if !errors.Is(err, ErrContainerNotFound) {
		t.Fatalf("expected ErrContainerNotFound, got %v", err)
	}
	if db.execs != 0 {
		t.Fatal("no update may run for an unresolved container")
	}
}

func TestRemoveStockUnknownItemReadsAsAbsent(t *testing.T) {
	db := &stubStockDB{row: stubExistsRow{containerOK: true}}
	repo := NewStockRepository(db)

	err := repo.RemoveStock(context.Background(), "item-gone", "container-1", "company-a", 5)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if db.execs != 0 {
		t.Fatal("no update may run for an unresolved item")
	}
}

func TestRemoveStockShortfall(t *testing.T) {
	db := &stubStockDB{row: stubExistsRow{itemOK: true, containerOK: true}, tag: "UPDATE 0"}
	repo := NewStockRepository(db)

	err := repo.RemoveStock(context.Background(), "item-1", "container-1", "company-a", 5)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestRemoveStockLowersLevel(t *testing.T) {
	db := &stubStockDB{row: stubExistsRow{itemOK: true, containerOK: true}, tag: "UPDATE 1"}
	repo := NewStockRepository(db)

	if err := repo.RemoveStock(context.Background(), "item-1", "container-1", "company-a", 5); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if db.execs != 1 {
		t.Fatalf("expected one update, got %d", db.execs)
	}
}
