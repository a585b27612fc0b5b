package product

import (
	"errors"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront.GO/model/entity"
	"storefront.GO/model/filter"
)

// ErrNotFound is returned when no product matches the id.
var ErrNotFound = errors.New("product not found")

type ProductRepository struct {
	db *gorm.DB
}

var (
	productRepoInstance *ProductRepository
	productRepoOnce     sync.Once
	productRepoDB       *gorm.DB
)

// GetProductRepository returns the process-wide repository for db.
func GetProductRepository(db *gorm.DB) *ProductRepository {
	productRepoOnce.Do(func() {
		productRepoInstance = NewProductRepository(db)
		productRepoDB = db
	})
	if productRepoDB != db {
		return NewProductRepository(db)
	}
	return productRepoInstance
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) DB() *gorm.DB {
	return r.db
}

func (r *ProductRepository) FindAll() ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.Order("created_at DESC").Find(&products).Error
	return products, err
}

// FindByID returns ErrNotFound for unknown ids.
func (r *ProductRepository) FindByID(id string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDs returns products keyed by id; unknown ids are absent.
func (r *ProductRepository) FindByIDs(ids []string) (map[string]entity.Product, error) {
	out := make(map[string]entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []entity.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// FindFiltered applies an IN clause per known section and orders by sort.
// Sections outside filter.KnownSections are ignored.
func (r *ProductRepository) FindFiltered(sel filter.Selection, sort filter.Sort) ([]entity.Product, error) {
	q := r.db.Model(&entity.Product{})
	for _, section := range filter.KnownSections {
		if opts := sel[section]; len(opts) > 0 {
			q = q.Where(section+" IN ?", opts)
		}
	}
	var products []entity.Product
	err := q.Order(sort.OrderClause()).Order("id ASC").Find(&products).Error
	return products, err
}

// SearchLike matches keyword against title, description, category and brand.
func (r *ProductRepository) SearchLike(keyword string, limit int) ([]entity.Product, error) {
	like := "%" + keyword + "%"
	var products []entity.Product
	q := r.db.Where("title LIKE ? OR description LIKE ? OR category LIKE ? OR brand LIKE ?", like, like, like, like).
		Order("title ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *ProductRepository) Create(p *entity.Product) error {
	return r.db.Create(p).Error
}

// Update saves all columns of p. Returns ErrNotFound when the row is gone.
func (r *ProductRepository) Update(p *entity.Product) error {
	res := r.db.Model(&entity.Product{}).Where("id = ?", p.ID).Select("*").Omit("id", "created_at").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the product and any cart lines pointing at it.
func (r *ProductRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&entity.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("product_id = ?", id).Delete(&entity.CartItem{}).Error
	})
}

// UpsertBySKU inserts products or updates catalog columns of existing SKUs, in batches.
func (r *ProductRepository) UpsertBySKU(products []*entity.Product, batchSize int) error {
	if len(products) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "image", "category", "brand", "price", "sale_price", "total_stock", "updated_at"}),
	}).CreateInBatches(products, batchSize).Error
}

// FindIDsBySKUs maps sku to product id for existing SKUs.
func (r *ProductRepository) FindIDsBySKUs(skus []string) (map[string]string, error) {
	out := make(map[string]string, len(skus))
	if len(skus) == 0 {
		return out, nil
	}
	var rows []struct {
		ID  string
		SKU string
	}
	if err := r.db.Model(&entity.Product{}).Select("id, sku").Where("sku IN ?", skus).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SKU] = row.ID
	}
	return out, nil
}

// Count returns the number of products.
func (r *ProductRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&entity.Product{}).Count(&n).Error
	return n, err
}
