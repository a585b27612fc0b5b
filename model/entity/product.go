package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product represents the products table
type Product struct {
	ID          string            `gorm:"column:id;primaryKey;size:36" json:"id"`
	SKU         string            `gorm:"column:sku;size:64;uniqueIndex" json:"sku"`
	Title       string            `gorm:"column:title;size:255;not null" json:"title"`
	Description string            `gorm:"column:description;type:text" json:"description"`
	Image       string            `gorm:"column:image;size:1024" json:"image"`
	Category    string            `gorm:"column:category;size:64;index" json:"category"`
	Brand       string            `gorm:"column:brand;size:64;index" json:"brand"`
	Price       float64           `gorm:"column:price;type:decimal(12,2);not null;default:0" json:"price"`
	SalePrice   float64           `gorm:"column:sale_price;type:decimal(12,2);not null;default:0" json:"salePrice"`
	TotalStock  int               `gorm:"column:total_stock;not null;default:0" json:"totalStock"`
	Attributes  datatypes.JSONMap `gorm:"column:attributes" json:"attributes,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"column:updated_at" json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns a uuid and defaults the SKU to it.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.SKU == "" {
		p.SKU = p.ID
	}
	return nil
}

// EffectivePrice is the sale price when one is set, otherwise the list price.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}
