// Package custom holds extensions registered at init: GraphQL _extension
// resolvers, CLI commands and plain HTTP routes.
package custom

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"storefront.GO/api"
	"storefront.GO/cmd"
	gqlregistry "storefront.GO/graphql/registry"
	"storefront.GO/model/filter"
)

// SortOption is one entry of the catalog sort menu.
type SortOption struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Default bool   `json:"default,omitempty"`
}

func sortOptions() []SortOption {
	out := make([]SortOption, 0, len(filter.SortOptions))
	for _, o := range filter.SortOptions {
		out = append(out, SortOption{ID: string(o.ID), Label: o.Label, Default: o.ID == filter.DefaultSort})
	}
	return out
}

func init() {
	gqlregistry.Register("sortOptions", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return sortOptions(), nil
	})

	cmd.Register(&cobra.Command{
		Use:   "catalog:sorts",
		Short: "List catalog sort options",
		Run: func(c *cobra.Command, args []string) {
			for _, o := range sortOptions() {
				mark := " "
				if o.Default {
					mark = "*"
				}
				fmt.Fprintf(c.OutOrStdout(), "%s %-16s %s\n", mark, o.ID, o.Label)
			}
		},
	})

	api.RegisterGET("/api/shop/sort-options", func(c echo.Context) error {
		return api.OK(c, sortOptions())
	})
}
