package cart

import (
	"errors"

	"gorm.io/gorm"

	"storefront.GO/model/entity"
)

// ErrItemNotFound is returned when the user has no line for the product.
var ErrItemNotFound = errors.New("cart item not found")

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Transaction runs fn with a repository bound to a single DB transaction.
func (r *CartRepository) Transaction(fn func(tx *CartRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&CartRepository{db: tx})
	})
}

// FindLines joins the user's items with products, in insertion order.
// Items whose product has been deleted are skipped.
func (r *CartRepository) FindLines(userID string) ([]entity.CartLine, error) {
	var lines []entity.CartLine
	err := r.db.Table("cart_items AS ci").
		Select("ci.product_id, ci.quantity, p.title, p.image, p.price, p.sale_price, p.total_stock").
		Joins("JOIN products AS p ON p.id = ci.product_id").
		Where("ci.user_id = ?", userID).
		Order("ci.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []entity.CartLine{}
	}
	return lines, nil
}

// FindItem returns ErrItemNotFound when absent.
func (r *CartRepository) FindItem(userID, productID string) (*entity.CartItem, error) {
	var item entity.CartItem
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) Create(item *entity.CartItem) error {
	return r.db.Create(item).Error
}

// SetQuantity updates the quantity of an existing line.
func (r *CartRepository) SetQuantity(userID, productID string, qty int) error {
	res := r.db.Model(&entity.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *CartRepository) Delete(userID, productID string) error {
	res := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&entity.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// ProductStock returns total_stock for productID; found is false for unknown products.
func (r *CartRepository) ProductStock(productID string) (stock int, found bool, err error) {
	var rows []int
	err = r.db.Model(&entity.Product{}).Where("id = ?", productID).Limit(1).Pluck("total_stock", &rows).Error
	if err != nil || len(rows) == 0 {
		return 0, false, err
	}
	return rows[0], true, nil
}
