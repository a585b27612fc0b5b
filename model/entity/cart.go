package entity

import "time"

// CartItem represents the cart_items table. One row per (user, product).
type CartItem struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UserID    string    `gorm:"column:user_id;size:64;not null;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID string    `gorm:"column:product_id;size:36;not null;uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"-"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine is a cart item joined with the product fields shown next to it.
type CartLine struct {
	ProductID  string  `json:"productId"`
	Quantity   int     `json:"quantity"`
	Title      string  `json:"title"`
	Image      string  `json:"image"`
	Price      float64 `json:"price"`
	SalePrice  float64 `json:"salePrice"`
	TotalStock int     `json:"totalStock"`
}

// LineTotal is quantity times the effective unit price.
func (l CartLine) LineTotal() float64 {
	unit := l.Price
	if l.SalePrice > 0 {
		unit = l.SalePrice
	}
	return unit * float64(l.Quantity)
}

// Cart is a user's lines in insertion order.
type Cart struct {
	UserID string     `json:"userId"`
	Items  []CartLine `json:"items"`
}

// Line returns the line for productID, if present.
func (c *Cart) Line(productID string) (CartLine, bool) {
	if c == nil {
		return CartLine{}, false
	}
	for _, l := range c.Items {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Subtotal sums LineTotal over all lines.
func (c *Cart) Subtotal() float64 {
	if c == nil {
		return 0
	}
	var total float64
	for _, l := range c.Items {
		total += l.LineTotal()
	}
	return total
}
