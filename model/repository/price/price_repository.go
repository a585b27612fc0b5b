package price

import (
	"database/sql"

	"gorm.io/gorm"
)

type PriceRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewPriceRepository(db *gorm.DB) (*PriceRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &PriceRepository{db: db, sqlDB: sqlDB}, nil
}

// GetEffectivePrice returns sale_price when positive, otherwise price.
// Uses raw SQL with CASE for minimal overhead
func (r *PriceRepository) GetEffectivePrice(productID string) (float64, bool) {
	const query = `
		SELECT CASE WHEN sale_price > 0 THEN sale_price ELSE price END
		FROM products
		WHERE id = ?
		LIMIT 1
	`
	var price sql.NullFloat64
	if err := r.sqlDB.QueryRow(query, productID).Scan(&price); err != nil || !price.Valid {
		return 0, false
	}
	return price.Float64, true
}

// GetPrices returns list and sale price for a product.
func (r *PriceRepository) GetPrices(productID string) (PriceResult, bool) {
	var res PriceResult
	row := r.sqlDB.QueryRow(`SELECT price, sale_price FROM products WHERE id = ? LIMIT 1`, productID)
	if err := row.Scan(&res.Price, &res.SalePrice); err != nil {
		return PriceResult{}, false
	}
	return res, true
}

// GetCartSubtotal sums quantity * effective price over a user's cart.
func (r *PriceRepository) GetCartSubtotal(userID string) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(ci.quantity * CASE WHEN p.sale_price > 0 THEN p.sale_price ELSE p.price END), 0)
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = ?
	`
	var total float64
	err := r.sqlDB.QueryRow(query, userID).Scan(&total)
	return total, err
}

// PriceResult holds price query result
type PriceResult struct {
	Price     float64 `json:"price"`
	SalePrice float64 `json:"salePrice"`
}
