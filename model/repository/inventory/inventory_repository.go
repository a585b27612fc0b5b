package inventory

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"storefront.GO/model/entity"
)

type InventoryRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewInventoryRepository(db *gorm.DB) (*InventoryRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &InventoryRepository{db: db, sqlDB: sqlDB}, nil
}

// GetTotalStock returns total_stock for a product id.
// Uses raw SQL for minimal overhead
func (r *InventoryRepository) GetTotalStock(productID string) (int, bool) {
	const query = `SELECT total_stock FROM products WHERE id = ? LIMIT 1`
	var qty sql.NullInt64
	if err := r.sqlDB.QueryRow(query, productID).Scan(&qty); err != nil || !qty.Valid {
		return 0, false
	}
	return int(qty.Int64), true
}

// BatchGetStock fetches stock for multiple product ids in one query
func (r *InventoryRepository) BatchGetStock(productIDs []string) (map[string]int, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	result := make(map[string]int, len(productIDs))
	rows, err := r.db.Table("products").
		Select("id, total_stock").
		Where("id IN ?", productIDs).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var qty int
		if err := rows.Scan(&id, &qty); err != nil {
			continue
		}
		result[id] = qty
	}
	return result, rows.Err()
}

// SetStockBySKU overwrites total_stock for each SKU inside one transaction and
// returns the SKUs that matched no product.
func (r *InventoryRepository) SetStockBySKU(stock map[string]int) (missing []string, err error) {
	if len(stock) == 0 {
		return nil, nil
	}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		for sku, qty := range stock {
			if qty < 0 {
				return errors.New("negative stock for sku " + sku)
			}
			res := tx.Model(&entity.Product{}).Where("sku = ?", sku).Update("total_stock", qty)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				missing = append(missing, sku)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return missing, nil
}
