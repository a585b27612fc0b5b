package html

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	"storefront.GO/config"
	"storefront.GO/html/parts"
	"storefront.GO/model/entity"
	"storefront.GO/model/filter"
	productService "storefront.GO/service/product"
)

const defaultLimit = 20

func init() {
	api.RegisterRoute(RegisterShopHTMLRoutes)
}

// RegisterShopHTMLRoutes mounts /shop/listing and /shop/product/:id and
// installs the page renderer when none is set.
func RegisterShopHTMLRoutes(e *echo.Echo, deps *api.Deps) {
	if deps == nil || deps.Products == nil {
		return
	}
	if e.Renderer == nil {
		tmpl, err := NewTemplate()
		if err != nil {
			panic("html templates: " + err.Error())
		}
		e.Renderer = tmpl
	}
	h := &pages{svc: deps.Products, appName: config.GetEnv("APP_NAME", "storefront")}
	e.GET("/shop/listing", h.listing)
	e.GET("/shop/product/:id", h.product)
}

type pages struct {
	svc     *productService.Service
	appName string
}

type link struct {
	Label string
	Href  string
	On    bool
}

type section struct {
	Label   string
	Options []link
}

// GET /shop/listing?category=men,women&brand=nike&sortBy=price-hightolow&p=2&limit=20
func (h *pages) listing(c echo.Context) error {
	q := c.QueryParams()
	sel := filter.FromValues(q, filter.KnownSections)
	sortBy := filter.ParseSort(q.Get("sortBy"))

	all, err := h.svc.ListFiltered(c.Request().Context(), sel, sortBy)
	if err != nil {
		c.Logger().Error(err)
		return c.String(http.StatusInternalServerError, "Error fetching products")
	}
	// Options come from the unfiltered catalog so deselecting stays possible.
	everything, err := h.svc.ListFiltered(c.Request().Context(), filter.Selection{}, filter.DefaultSort)
	if err != nil {
		everything = all
	}

	limit := atoiOr(q.Get("limit"), defaultLimit)
	page := atoiOr(q.Get("p"), 1)
	total := len(all)
	totalPages := (total + limit - 1) / limit
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	start := (page - 1) * limit
	end := start + limit
	if end > total {
		end = total
	}
	var pageNumbers []int
	for i := 1; i <= totalPages; i++ {
		pageNumbers = append(pageNumbers, i)
	}

	base := url.Values{}
	for _, k := range filter.KnownSections {
		if v := sel[k]; len(v) > 0 {
			base.Set(k, strings.Join(v, ","))
		}
	}
	base.Set("sortBy", string(sortBy))

	return c.Render(http.StatusOK, "listing.html", map[string]interface{}{
		"Title":       "Products - " + h.appName,
		"AppName":     h.appName,
		"CriticalCSS": parts.CriticalCSS(),
		"Sections":    sections(everything, sel, sortBy),
		"Sorts":       sortLinks(sel, sortBy),
		"Products":    all[start:end],
		"Total":       total,
		"Page":        page,
		"TotalPages":  totalPages,
		"PageNumbers": pageNumbers,
		"Query":       base,
	})
}

func (h *pages) product(c echo.Context) error {
	p, err := h.svc.Details(c.Request().Context(), c.Param("id"))
	if errors.Is(err, productService.ErrNotFound) {
		return c.String(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		c.Logger().Error(err)
		return c.String(http.StatusInternalServerError, "Error fetching product")
	}
	return c.Render(http.StatusOK, "product.html", map[string]interface{}{
		"Title":       p.Title + " - " + h.appName,
		"AppName":     h.appName,
		"CriticalCSS": parts.CriticalCSS(),
		"Product":     p,
	})
}

// sections lists every category and brand present in the catalog; each link
// toggles its option against the current selection.
func sections(products []entity.Product, sel filter.Selection, sortBy filter.Sort) []section {
	values := map[string]map[string]bool{filter.SectionCategory: {}, filter.SectionBrand: {}}
	for _, p := range products {
		if p.Category != "" {
			values[filter.SectionCategory][p.Category] = true
		}
		if p.Brand != "" {
			values[filter.SectionBrand][p.Brand] = true
		}
	}
	out := make([]section, 0, len(filter.KnownSections))
	for _, key := range filter.KnownSections {
		opts := make([]string, 0, len(values[key]))
		for v := range values[key] {
			opts = append(opts, v)
		}
		sort.Strings(opts)
		s := section{Label: strings.ToUpper(key[:1]) + key[1:]}
		for _, o := range opts {
			next := sel.Toggle(key, o)
			s.Options = append(s.Options, link{
				Label: o,
				Href:  withSort(next, sortBy),
				On:    len(next[key]) < len(sel[key]),
			})
		}
		out = append(out, s)
	}
	return out
}

func sortLinks(sel filter.Selection, current filter.Sort) []link {
	out := make([]link, 0, len(filter.SortOptions))
	for _, o := range filter.SortOptions {
		out = append(out, link{Label: o.Label, Href: withSort(sel, o.ID), On: o.ID == current})
	}
	return out
}

func withSort(sel filter.Selection, s filter.Sort) string {
	q := sel.QueryString()
	if q != "" {
		q += "&"
	}
	return "?" + q + "sortBy=" + url.QueryEscape(string(s))
}

func atoiOr(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}
