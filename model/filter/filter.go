// Package filter holds the catalog query descriptor shared by the server and
// the shopper workflows: facet selections and the sort criterion.
package filter

import (
	"net/url"
	"sort"
	"strings"
)

// Selection maps a facet section (category, brand, ...) to its selected options
// in the order they were picked.
type Selection map[string][]string

// Sections the catalog can filter on server side.
const (
	SectionCategory = "category"
	SectionBrand    = "brand"
)

// KnownSections lists the server-side filterable columns.
var KnownSections = []string{SectionCategory, SectionBrand}

// Toggle returns a copy of s with option added to section when absent, or
// removed when present. s is not modified.
func (s Selection) Toggle(section, option string) Selection {
	out := s.Clone()
	opts := out[section]
	for i, o := range opts {
		if o == option {
			out[section] = append(opts[:i:i], opts[i+1:]...)
			return out
		}
	}
	out[section] = append(opts, option)
	return out
}

// Clone deep-copies the selection. A nil selection clones to an empty one.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Empty reports whether no section has a selected option.
func (s Selection) Empty() bool {
	for _, v := range s {
		if len(v) > 0 {
			return false
		}
	}
	return true
}

// Equal compares two selections, treating empty sections as absent.
func (s Selection) Equal(o Selection) bool {
	return s.QueryString() == o.QueryString()
}

// QueryString encodes non-empty sections as key=v1,v2 joined by '&', keys sorted.
// Values are query-escaped individually so the separating commas stay literal.
func (s Selection) QueryString() string {
	keys := make([]string, 0, len(s))
	for k, v := range s {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		vals := make([]string, len(s[k]))
		for i, v := range s[k] {
			vals[i] = url.QueryEscape(v)
		}
		parts = append(parts, url.QueryEscape(k)+"="+strings.Join(vals, ","))
	}
	return strings.Join(parts, "&")
}

// FromValues reads sections from parsed query values, splitting on commas.
// Only the given sections are read; pass nil to read every key.
func FromValues(v url.Values, sections []string) Selection {
	out := Selection{}
	read := func(key string) {
		raw := v.Get(key)
		if raw == "" {
			return
		}
		for _, opt := range strings.Split(raw, ",") {
			if opt = strings.TrimSpace(opt); opt != "" {
				out[key] = append(out[key], opt)
			}
		}
	}
	if sections == nil {
		for k := range v {
			read(k)
		}
		return out
	}
	for _, k := range sections {
		read(k)
	}
	return out
}

// ParseQuery is FromValues over a raw query string.
func ParseQuery(raw string, sections []string) (Selection, error) {
	v, err := url.ParseQuery(raw)
	if err != nil {
		return nil, err
	}
	return FromValues(v, sections), nil
}
