// Package category holds the immutable business category registry and the
// per-category sourcing strategies. The registry is read-only at runtime; the
// rotation pointer lives on the region, not here.
package category

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Category is one immutable registry entry.
type Category struct {
	Code           string  `yaml:"code"`
	Label          string  `yaml:"label"`
	Query          string  `yaml:"query"`
	Strategy       string  `yaml:"strategy"`
	Provider       string  `yaml:"provider"`
	Intent         string  `yaml:"intent"`
	CostPerContact float64 `yaml:"cost_per_contact_eur"`
}

// PortalSearch reports whether the category sources via portal scraping,
// which the research engine handles under a dedicated intent.
func (c Category) PortalSearch() bool {
	return c.Intent == "search_portals"
}

//go:embed categories.yaml
var registryYAML []byte

var categories []Category

func init() {
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(registryYAML, &doc); err != nil {
		panic(fmt.Sprintf("category: parse embedded registry: %v", err))
	}
	if len(doc.Categories) == 0 {
		panic("category: embedded registry is empty")
	}
	categories = doc.Categories
}

// All returns the ordered category list.
func All() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Count returns the number of registered categories.
func Count() int { return len(categories) }

// ByIndex returns the category at i modulo the list length, so any
// non-negative rotation pointer is a valid index.
func ByIndex(i int) Category {
	return categories[i%len(categories)]
}

// ByCode looks up a category by its code.
func ByCode(code string) (Category, bool) {
	for _, c := range categories {
		if c.Code == code {
			return c, true
		}
	}
	return Category{}, false
}
