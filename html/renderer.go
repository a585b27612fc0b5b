// Package html serves the server-rendered shop listing and product pages.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

type Template struct {
	Templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.Templates.ExecuteTemplate(w, name, data)
}

// NewTemplate parses the embedded page templates.
func NewTemplate() (*Template, error) {
	tmpl, err := template.New("").Funcs(TemplateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Template{Templates: tmpl}, nil
}

// TemplateFuncs returns FuncMap with helpers for prices and pagination
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
		"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
		"pageHref": func(q url.Values, page int) string {
			out := url.Values{}
			for k, v := range q {
				out[k] = v
			}
			out.Set("p", strconv.Itoa(page))
			return "?" + out.Encode()
		},
	}
}
