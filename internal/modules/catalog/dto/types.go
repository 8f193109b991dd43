package dto

import "demoprep/internal/modules/catalog/domain"

type SearchInput struct {
	Category string
	Query    string
	Industry string
}

type ItemOutput struct {
	ID       string
	Category string
	Title    string
	Group    string
	Detail   string
}

// ResolveInput carries a session's selections keyed by category name.
type ResolveInput struct {
	Selected map[string][]string
}

type BundleOutput struct {
	Bundle domain.Bundle
	// All is set when nothing was selected and the whole catalog was taken.
	All bool
}

type CatalogOutput struct {
	Catalog    domain.Catalog
	Industries []string
}
