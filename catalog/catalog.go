// Package catalog derives the storefront and admin views of the product list.
package catalog

import (
	"strings"

	"github.com/Kariqs/goutam-store/models"
)

// AllCategories matches every category.
const AllCategories = "all"

type Query struct {
	Search   string
	Category string
	Language string
	// IncludeUnavailable is set for admin listings only.
	IncludeUnavailable bool
}

// Filter returns the products a shopper sees for q, keeping the input order.
// Search matches the name in the requested language (English when the
// translation is missing) or the category.
func Filter(products []models.Product, q Query) []models.Product {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !p.Available && !q.IncludeUnavailable {
			continue
		}
		if category != "" && !strings.EqualFold(category, AllCategories) && p.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name.In(q.Language)), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// AdminSearch matches term against both names and the category, regardless
// of availability.
func AdminSearch(products []models.Product, term string) []models.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	var out []models.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name.En), term) ||
			strings.Contains(strings.ToLower(p.Name.Hi), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			out = append(out, p)
		}
	}
	return out
}
