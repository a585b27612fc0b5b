package api

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	cartService "storefront.GO/service/cart"
	"storefront.GO/service/media"
	productService "storefront.GO/service/product"
	searchService "storefront.GO/service/search"
)

// Deps is what route modules may use. Nil fields mean the feature is off.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Log      *slog.Logger
	Products *productService.Service
	Carts    *cartService.Service
	Search   *searchService.Service
	Indexer  *searchService.Indexer
	Media    *media.Uploader
}

// Logger never returns nil.
func (d *Deps) Logger() *slog.Logger {
	if d == nil || d.Log == nil {
		return slog.Default()
	}
	return d.Log
}
