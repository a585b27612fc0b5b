// Package models holds the GraphQL output shapes. Fields resolve directly
// through graphql-go's field resolvers.
package models

import (
	gql "github.com/graph-gophers/graphql-go"

	"storefront.GO/model/entity"
)

type Product struct {
	ID             gql.ID
	SKU            string
	Title          string
	Description    string
	Image          string
	Category       string
	Brand          string
	Price          float64
	SalePrice      float64
	EffectivePrice float64
	TotalStock     int32
}

func NewProduct(p entity.Product) *Product {
	return &Product{
		ID:             gql.ID(p.ID),
		SKU:            p.SKU,
		Title:          p.Title,
		Description:    p.Description,
		Image:          p.Image,
		Category:       p.Category,
		Brand:          p.Brand,
		Price:          p.Price,
		SalePrice:      p.SalePrice,
		EffectivePrice: p.EffectivePrice(),
		TotalStock:     int32(p.TotalStock),
	}
}

func NewProducts(ps []entity.Product) []*Product {
	out := make([]*Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProduct(p))
	}
	return out
}

type CartLine struct {
	ProductID  gql.ID
	Quantity   int32
	Title      string
	Image      string
	Price      float64
	SalePrice  float64
	TotalStock int32
	LineTotal  float64
}

type Cart struct {
	UserID   gql.ID
	Items    []*CartLine
	Subtotal float64
}

func NewCart(c *entity.Cart) *Cart {
	out := &Cart{UserID: gql.ID(c.UserID), Items: make([]*CartLine, 0, len(c.Items)), Subtotal: c.Subtotal()}
	for _, l := range c.Items {
		out.Items = append(out.Items, &CartLine{
			ProductID:  gql.ID(l.ProductID),
			Quantity:   int32(l.Quantity),
			Title:      l.Title,
			Image:      l.Image,
			Price:      l.Price,
			SalePrice:  l.SalePrice,
			TotalStock: int32(l.TotalStock),
			LineTotal:  l.LineTotal(),
		})
	}
	return out
}
