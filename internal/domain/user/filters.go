package user

import "errors"

// Filter is a recipe filter tag. Default filters ship with the app on
// display rows 1 and 2; custom filters belong to a single user and
// always sit on row 3.
type Filter struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Row   int    `json:"row"`
	Color string `json:"color"`
}

// CustomFilterRow is the display row reserved for user-defined filters.
const CustomFilterRow = 3

// defaultFilterColor is used when a custom filter is created without
// an explicit color.
const defaultFilterColor = "#6B7280"

// Filter errors
var (
	ErrFilterNameRequired = errors.New("filter name is required")
	ErrFilterExists       = errors.New("a filter with this name already exists")
	ErrFilterNotFound     = errors.New("filter not found")
)

// defaultFilters is the built-in catalog, in display order.
var defaultFilters = []Filter{
	{ID: "apero", Name: "Apéro", Row: 1, Color: "#F59E0B"},
	{ID: "entrees", Name: "Entrées", Row: 1, Color: "#10B981"},
	{ID: "plats", Name: "Plats", Row: 1, Color: "#3A5A40"},
	{ID: "desserts", Name: "Desserts", Row: 1, Color: "#EC4899"},
	{ID: "sale", Name: "Salé", Row: 2, Color: "#EF4444"},
	{ID: "sucre", Name: "Sucré", Row: 2, Color: "#8B5CF6"},
	{ID: "viande", Name: "Viande", Row: 2, Color: "#B91C1C"},
	{ID: "poisson", Name: "Poisson", Row: 2, Color: "#06B6D4"},
}

// DefaultFilters returns the built-in filter catalog.
func DefaultFilters() []Filter {
	out := make([]Filter, len(defaultFilters))
	copy(out, defaultFilters)
	return out
}

// IsDefaultFilter reports whether the id names a built-in filter.
func IsDefaultFilter(id string) bool {
	for _, f := range defaultFilters {
		if f.ID == id {
			return true
		}
	}
	return false
}
