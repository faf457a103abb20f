package catalog

import (
	"strings"

	"agrilocal/internal/domain"
)

// CategoryAll is the sentinel selecting every category.
const CategoryAll = "all"

// Filter narrows a listing set by a free-text search term and a category
// selection. A listing is retained iff the category matches (or CategoryAll
// is selected) and the search term is a case-insensitive substring of the
// product name, the resolved farmer display name, or the resolved farm name.
// An unresolved farmer contributes empty strings to the match, never a
// wildcard. The input order is preserved and the input slice is not modified.
func Filter(listings []domain.ProductListing, searchTerm, category string) []domain.ProductListing {
	search := strings.ToLower(searchTerm)
	if strings.TrimSpace(search) == "" {
		search = ""
	}

	out := make([]domain.ProductListing, 0, len(listings))
	for _, l := range listings {
		if !matchesCategory(l, category) {
			continue
		}
		if !matchesSearch(l, search) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesCategory(l domain.ProductListing, category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return string(l.Product.Category) == category
}

func matchesSearch(l domain.ProductListing, search string) bool {
	if search == "" {
		return true
	}

	var farmerName, farmName string
	if l.Farmer.Resolved {
		farmerName = l.Farmer.Name
		farmName = l.Farmer.FarmName
	}

	return strings.Contains(strings.ToLower(l.Product.Name), search) ||
		strings.Contains(strings.ToLower(farmerName), search) ||
		strings.Contains(strings.ToLower(farmName), search)
}
