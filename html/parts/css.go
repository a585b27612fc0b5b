package parts

import (
	_ "embed"
	"html/template"
)

//go:embed critical.css
var criticalCSS string

// CriticalCSS is inlined into every page head.
func CriticalCSS() template.CSS {
	return template.CSS(criticalCSS)
}
