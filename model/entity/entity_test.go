package entity

import "testing"

func TestProduct_TableName(t *testing.T) {
	if got := (Product{}).TableName(); got != "products" {
		t.Errorf("TableName = %q, want products", got)
	}
	if got := (CartItem{}).TableName(); got != "cart_items" {
		t.Errorf("TableName = %q, want cart_items", got)
	}
}

func TestProduct_BeforeCreate(t *testing.T) {
	p := &Product{Title: "Tee"}
	if err := p.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if len(p.ID) != 36 {
		t.Errorf("ID = %q, want uuid", p.ID)
	}
	if p.SKU != p.ID {
		t.Errorf("SKU = %q, want default %q", p.SKU, p.ID)
	}

	keep := &Product{ID: "fixed", SKU: "TEE-1"}
	_ = keep.BeforeCreate(nil)
	if keep.ID != "fixed" || keep.SKU != "TEE-1" {
		t.Errorf("BeforeCreate overwrote fields: %+v", keep)
	}
}

func TestProduct_EffectivePrice(t *testing.T) {
	tests := []struct {
		price, sale, want float64
	}{
		{100, 0, 100},
		{100, 80, 80},
		{100, -1, 100},
	}
	for _, tt := range tests {
		p := Product{Price: tt.price, SalePrice: tt.sale}
		if got := p.EffectivePrice(); got != tt.want {
			t.Errorf("EffectivePrice(%v,%v) = %v, want %v", tt.price, tt.sale, got, tt.want)
		}
	}
}

func TestCart_LineAndSubtotal(t *testing.T) {
	c := &Cart{UserID: "u1", Items: []CartLine{
		{ProductID: "a", Quantity: 2, Price: 10},
		{ProductID: "b", Quantity: 1, Price: 30, SalePrice: 25},
	}}
	if l, ok := c.Line("b"); !ok || l.Quantity != 1 {
		t.Fatalf("Line(b) = %+v,%v", l, ok)
	}
	if _, ok := c.Line("zzz"); ok {
		t.Error("Line(zzz): want false")
	}
	if got := c.Subtotal(); got != 45 {
		t.Errorf("Subtotal = %v, want 45", got)
	}
	var nilCart *Cart
	if _, ok := nilCart.Line("a"); ok {
		t.Error("nil cart Line: want false")
	}
}
