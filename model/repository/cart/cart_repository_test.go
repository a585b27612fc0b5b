package cart

import (
	"errors"
	"testing"

	"storefront.GO/model/entity"
	"storefront.GO/model/testdb"
)

func TestCartRepository_Lines(t *testing.T) {
	db := testdb.Open(t)
	p1 := &entity.Product{Title: "Tee", Price: 20, SalePrice: 15, TotalStock: 5}
	p2 := &entity.Product{Title: "Cap", Price: 10, TotalStock: 2}
	testdb.SeedProducts(t, db, p1, p2)
	repo := NewCartRepository(db)

	lines, err := repo.FindLines("u1")
	if err != nil {
		t.Fatalf("FindLines empty: %v", err)
	}
	if lines == nil || len(lines) != 0 {
		t.Fatalf("FindLines empty = %v, want empty non-nil", lines)
	}

	if err := repo.Create(&entity.CartItem{UserID: "u1", ProductID: p2.ID, Quantity: 1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(&entity.CartItem{UserID: "u1", ProductID: p1.ID, Quantity: 3}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(&entity.CartItem{UserID: "u2", ProductID: p1.ID, Quantity: 1}); err != nil {
		t.Fatalf("Create other user: %v", err)
	}

	lines, err = repo.FindLines("u1")
	if err != nil {
		t.Fatalf("FindLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("FindLines = %d lines, want 2", len(lines))
	}
	if lines[0].ProductID != p2.ID || lines[1].ProductID != p1.ID {
		t.Errorf("lines not in insertion order: %+v", lines)
	}
	if lines[1].Title != "Tee" || lines[1].SalePrice != 15 || lines[1].TotalStock != 5 || lines[1].Quantity != 3 {
		t.Errorf("denormalized line = %+v", lines[1])
	}
}

func TestCartRepository_UniqueLine(t *testing.T) {
	db := testdb.Open(t)
	p := &entity.Product{Title: "Tee", Price: 20, TotalStock: 5}
	testdb.SeedProducts(t, db, p)
	repo := NewCartRepository(db)

	_ = repo.Create(&entity.CartItem{UserID: "u1", ProductID: p.ID, Quantity: 1})
	if err := repo.Create(&entity.CartItem{UserID: "u1", ProductID: p.ID, Quantity: 1}); err == nil {
		t.Error("second line for same product: want unique violation")
	}
}

func TestCartRepository_QuantityAndDelete(t *testing.T) {
	db := testdb.Open(t)
	p := &entity.Product{Title: "Tee", Price: 20, TotalStock: 5}
	testdb.SeedProducts(t, db, p)
	repo := NewCartRepository(db)

	if err := repo.SetQuantity("u1", p.ID, 2); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("SetQuantity missing = %v, want ErrItemNotFound", err)
	}
	_ = repo.Create(&entity.CartItem{UserID: "u1", ProductID: p.ID, Quantity: 1})

	err := repo.Transaction(func(tx *CartRepository) error {
		return tx.SetQuantity("u1", p.ID, 4)
	})
	if err != nil {
		t.Fatalf("SetQuantity in tx: %v", err)
	}
	item, err := repo.FindItem("u1", p.ID)
	if err != nil {
		t.Fatalf("FindItem: %v", err)
	}
	if item.Quantity != 4 {
		t.Errorf("Quantity = %d, want 4", item.Quantity)
	}

	if err := repo.Delete("u1", p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete("u1", p.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Delete twice = %v, want ErrItemNotFound", err)
	}
	if _, err := repo.FindItem("u1", p.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("FindItem after delete = %v", err)
	}
}

func TestCartRepository_ProductStock(t *testing.T) {
	db := testdb.Open(t)
	p := &entity.Product{Title: "Tee", Price: 20, TotalStock: 7}
	testdb.SeedProducts(t, db, p)
	repo := NewCartRepository(db)

	stock, found, err := repo.ProductStock(p.ID)
	if err != nil || !found || stock != 7 {
		t.Errorf("ProductStock = %d,%v,%v want 7,true,nil", stock, found, err)
	}
	if _, found, err := repo.ProductStock("nope"); found || err != nil {
		t.Errorf("ProductStock unknown = %v,%v", found, err)
	}
}
