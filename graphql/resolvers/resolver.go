// Package resolvers implements the GraphQL Query type over the storefront services.
package resolvers

import (
	"context"
	"encoding/json"
	"errors"

	gql "github.com/graph-gophers/graphql-go"

	"storefront.GO/graphql"
	"storefront.GO/graphql/models"
	gqlregistry "storefront.GO/graphql/registry"
	"storefront.GO/model/filter"
	cartService "storefront.GO/service/cart"
	productService "storefront.GO/service/product"
	searchService "storefront.GO/service/search"
)

// ErrUserRequired is returned by cart when neither the argument nor X-User-ID is set.
var ErrUserRequired = errors.New("userId is required")

// QueryResolver is the root resolver; its methods are the Query fields.
// New Query fields: use RegisterSchemaExtension + add a method here,
// or use _extension for fully dynamic resolvers.
type QueryResolver struct {
	products *productService.Service
	carts    *cartService.Service
	search   *searchService.Service
}

func NewQueryResolver(products *productService.Service, carts *cartService.Service, search *searchService.Service) *QueryResolver {
	return &QueryResolver{products: products, carts: carts, search: search}
}

type ProductsArgs struct {
	Filters *[]graphql.FilterInput
	SortBy  *string
}

func (r *QueryResolver) Products(ctx context.Context, args ProductsArgs) ([]*models.Product, error) {
	sel := filter.Selection{}
	if args.Filters != nil {
		for _, f := range *args.Filters {
			if len(f.Options) > 0 {
				sel[f.Section] = append(sel[f.Section], f.Options...)
			}
		}
	}
	sort := filter.DefaultSort
	if args.SortBy != nil {
		sort = filter.ParseSort(*args.SortBy)
	}
	ps, err := r.products.ListFiltered(ctx, sel, sort)
	if err != nil {
		return nil, err
	}
	return models.NewProducts(ps), nil
}

type ProductArgs struct {
	ID gql.ID
}

// Product returns null for an unknown id.
func (r *QueryResolver) Product(ctx context.Context, args ProductArgs) (*models.Product, error) {
	p, err := r.products.Details(ctx, string(args.ID))
	if errors.Is(err, productService.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return models.NewProduct(*p), nil
}

type SearchArgs struct {
	Keyword string
}

func (r *QueryResolver) Search(ctx context.Context, args SearchArgs) ([]*models.Product, error) {
	ps, err := r.search.Search(ctx, args.Keyword)
	if err != nil {
		return nil, err
	}
	return models.NewProducts(ps), nil
}

type CartArgs struct {
	UserID *gql.ID
}

func (r *QueryResolver) Cart(ctx context.Context, args CartArgs) (*models.Cart, error) {
	userID := graphql.UserIDFromContext(ctx)
	if args.UserID != nil && *args.UserID != "" {
		userID = string(*args.UserID)
	}
	if userID == "" {
		return nil, ErrUserRequired
	}
	c, err := r.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.NewCart(c), nil
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *QueryResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := gqlregistry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
