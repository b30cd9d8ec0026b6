package utils

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type pageItem struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func setupPaginationDB(t *testing.T, rows int) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&pageItem{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	for i := 0; i < rows; i++ {
		if err := db.Create(&pageItem{Name: "item"}).Error; err != nil {
			t.Fatalf("failed to seed row: %v", err)
		}
	}
	return db
}

func TestPaginateClampsPastTheEnd(t *testing.T) {
	db := setupPaginationDB(t, 25)

	var items []pageItem
	page, err := Paginate(db.Model(&pageItem{}), 99, "id ASC", &items)
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if page.Number != 3 || page.TotalPages != 3 {
		t.Fatalf("expected clamp to last page 3, got %+v", page)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items on last page, got %d", len(items))
	}
}

func TestPaginateInvalidPageIsFirstPage(t *testing.T) {
	db := setupPaginationDB(t, 15)

	for _, page := range []int{0, -3} {
		var items []pageItem
		got, err := Paginate(db.Model(&pageItem{}), page, "id ASC", &items)
		if err != nil {
			t.Fatalf("Paginate(%d) failed: %v", page, err)
		}
		if got.Number != 1 || len(items) != PageSize {
			t.Fatalf("Paginate(%d): expected full first page, got page %d with %d items",
				page, got.Number, len(items))
		}
	}
}

func TestPaginateEmptySet(t *testing.T) {
	db := setupPaginationDB(t, 0)

	var items []pageItem
	page, err := Paginate(db.Model(&pageItem{}), 1, "id ASC", &items)
	if err != nil {
		t.Fatalf("Paginate on empty set must not error: %v", err)
	}
	if len(items) != 0 || page.Number != 1 || page.TotalPages != 1 || page.TotalItems != 0 {
		t.Fatalf("expected one empty page, got %d items, %+v", len(items), page)
	}
}
