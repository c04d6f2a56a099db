package models

// CategoryCount is an aggregated row describing one category label: its
// URL-safe slug and how many published posts carry it.
type CategoryCount struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int64  `json:"count"`
}
