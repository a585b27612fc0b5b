package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storefront.GO/config"
	"storefront.GO/model/entity"
	"storefront.GO/model/filter"
	"storefront.GO/storefront"
	"storefront.GO/storefront/httpstore"
)

var (
	shopUser      string
	shopProduct   string
	shopDirection string
	shopSession   string
	shopCategory  string
	shopFilters   []string
	shopSort      string
)

// shopDeps builds a storefront.Deps against SHOP_API_URL, logging notices to stderr.
func shopDeps(cmd *cobra.Command) (storefront.Deps, *slog.Logger) {
	cfg := config.LoadAppConfig()
	log := config.NewLogger(cmd.ErrOrStderr())
	return storefront.Deps{
		Store:    httpstore.New(cfg.ShopAPIURL),
		Notifier: storefront.LogNotifier{Log: log},
		Session:  storefront.NewSession(shopUser),
		Log:      log,
	}, log
}

// loadLine refreshes the cart and product snapshot the cart workflows validate against.
func loadLine(ctx context.Context, d storefront.Deps, productID string) (entity.CartLine, error) {
	if err := d.Session.RefreshCart(ctx, d.Store); err != nil {
		return entity.CartLine{}, err
	}
	p, err := d.Store.FetchProductDetails(ctx, productID)
	if err != nil {
		return entity.CartLine{}, err
	}
	if p != nil {
		d.Session.SetProducts([]entity.Product{*p})
	} else {
		d.Session.SetProducts([]entity.Product{})
	}
	line, ok := d.Session.Cart().Line(productID)
	if !ok {
		return entity.CartLine{}, fmt.Errorf("product %s is not in the cart of %s", productID, d.Session.UserID)
	}
	return line, nil
}

var shopAddCmd = &cobra.Command{
	Use:   "shop:add",
	Short: "Add one unit of a product to a user's cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, _ := shopDeps(cmd)
		p, err := d.Store.FetchProductDetails(ctx, shopProduct)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("unknown product %s", shopProduct)
		}
		if err := d.Session.RefreshCart(ctx, d.Store); err != nil {
			return err
		}
		if err := storefront.NewCartAdder(d).Add(ctx, p.ID, p.TotalStock); err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), d.Session.Cart())
	},
}

var shopQtyCmd = &cobra.Command{
	Use:   "shop:qty",
	Short: "Increment or decrement a cart line by one",
	RunE: func(cmd *cobra.Command, args []string) error {
		var dir storefront.Direction
		switch shopDirection {
		case "inc", "plus", "+":
			dir = storefront.Increment
		case "dec", "minus", "-":
			dir = storefront.Decrement
		default:
			return fmt.Errorf("--dir must be inc or dec, got %q", shopDirection)
		}
		ctx := cmd.Context()
		d, _ := shopDeps(cmd)
		line, err := loadLine(ctx, d, shopProduct)
		if err != nil {
			return err
		}
		if err := storefront.NewCartAdjuster(d).Adjust(ctx, line, dir); err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), d.Session.Cart())
	},
}

var shopRemoveCmd = &cobra.Command{
	Use:   "shop:remove",
	Short: "Delete a line from a user's cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, _ := shopDeps(cmd)
		if err := storefront.NewCartRemover(d).Remove(ctx, entity.CartLine{ProductID: shopProduct}); err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), d.Session.Cart())
	},
}

var shopBrowseCmd = &cobra.Command{
	Use:   "shop:browse",
	Short: "List the catalog with persisted filters, toggling section=option pairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, log := shopDeps(cmd)
		sessions := shopSessionStore(ctx, log)
		c := storefront.NewCatalog(d, sessions)

		if err := c.Mount(ctx, shopCategory); err != nil {
			return err
		}
		for _, f := range shopFilters {
			section, option, ok := strings.Cut(f, "=")
			if !ok || section == "" || option == "" {
				return fmt.Errorf("--filter wants section=option, got %q", f)
			}
			if err := c.ToggleFilter(ctx, section, option); err != nil {
				return err
			}
		}
		if shopSort != "" {
			if err := c.SetSort(ctx, filter.Sort(shopSort)); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "?%s\n", c.Query())
		for _, p := range c.Products() {
			fmt.Fprintf(out, "%-36s  %-30s  %-10s %-10s %8.2f  stock %d\n",
				p.ID, p.Title, p.Category, p.Brand, p.EffectivePrice(), p.TotalStock)
		}
		return nil
	},
}

var shopSearchCmd = &cobra.Command{
	Use:   "shop:search <keyword>",
	Short: "Search the catalog the way the storefront search box does",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, log := shopDeps(cmd)
		done := make(chan storefront.SearchOutcome, 1)
		s := storefront.NewKeywordSearch(d.Store, d.Notifier, storefront.SearchOptions{
			Delay:    config.LoadAppConfig().SearchDelay,
			Log:      log,
			OnResult: func(o storefront.SearchOutcome) { done <- o },
		})
		defer s.Stop()

		// Feed the keyword one keystroke at a time; only the final one is sent.
		keyword := []rune(strings.Join(args, " "))
		for i := range keyword {
			s.Type(ctx, string(keyword[:i+1]))
		}
		if len([]rune(strings.TrimSpace(string(keyword)))) <= 3 {
			fmt.Fprintln(cmd.OutOrStdout(), "keyword too short, results cleared")
			return nil
		}

		select {
		case o := <-done:
			if o.Err != nil {
				return o.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "?%s\n", s.Query())
			for _, p := range o.Results {
				fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %s\n", p.ID, p.Title)
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(30 * time.Second):
			return errors.New("search timed out")
		}
	},
}

// shopSessionStore persists filters in Redis when reachable, otherwise for this run only.
func shopSessionStore(ctx context.Context, log *slog.Logger) storefront.SessionStore {
	config.InitRedis()
	if config.RedisClient == nil {
		return storefront.NewMemorySessionStore()
	}
	if err := config.RedisClient.Ping(ctx).Err(); err != nil {
		log.Warn("Redis not reachable, filters kept for this run only", "error", err)
		return storefront.NewMemorySessionStore()
	}
	return storefront.NewRedisSessionStore(config.RedisClient, shopSession, 24*time.Hour)
}

func printCart(w io.Writer, cart *entity.Cart) error {
	if cart == nil {
		fmt.Fprintln(w, "cart not loaded")
		return nil
	}
	for _, l := range cart.Items {
		fmt.Fprintf(w, "%-36s  %-30s  x%-3d %8.2f\n", l.ProductID, l.Title, l.Quantity, l.LineTotal())
	}
	fmt.Fprintf(w, "subtotal %.2f\n", cart.Subtotal())
	return nil
}

func init() {
	for _, c := range []*cobra.Command{shopAddCmd, shopQtyCmd, shopRemoveCmd, shopBrowseCmd, shopSearchCmd} {
		c.Flags().StringVarP(&shopUser, "user", "u", os.Getenv("SHOP_USER_ID"), "Shopper user id")
	}
	for _, c := range []*cobra.Command{shopAddCmd, shopQtyCmd, shopRemoveCmd} {
		c.Flags().StringVarP(&shopProduct, "product", "p", "", "Product id (required)")
		c.MarkFlagRequired("product")
	}
	shopQtyCmd.Flags().StringVar(&shopDirection, "dir", "inc", "inc or dec")
	shopBrowseCmd.Flags().StringVar(&shopSession, "session", "cli", "Session id filters are persisted under")
	shopBrowseCmd.Flags().StringVar(&shopCategory, "category", "", "Category the listing is opened on")
	shopBrowseCmd.Flags().StringArrayVarP(&shopFilters, "filter", "f", nil, "Toggle section=option (repeatable)")
	shopBrowseCmd.Flags().StringVar(&shopSort, "sort", "", "price-lowtohigh, price-hightolow, title-atoz or title-ztoa")

	rootCmd.AddCommand(shopAddCmd, shopQtyCmd, shopRemoveCmd, shopBrowseCmd, shopSearchCmd)
}
