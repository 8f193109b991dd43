package domain

import (
	"fmt"
	"slices"
	"strings"

	apperrors "demoprep/internal/platform/errors"
)

// Category names match the selection keys stored on sessions.
const (
	CategoryDiscovery       = "discovery"
	CategoryUseCases        = "usecases"
	CategoryDifferentiators = "differentiators"
	CategoryObjections      = "objections"
)

var Categories = []string{CategoryDiscovery, CategoryUseCases, CategoryDifferentiators, CategoryObjections}

// Item is the uniform list projection of any catalog entry.
type Item struct {
	ID         string
	Category   string
	Title      string
	Group      string
	Detail     string
	Industries []string
}

func (i Item) matches(query string) bool {
	if query == "" {
		return true
	}
	for _, field := range []string{i.ID, i.Title, i.Group, i.Detail} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Items lists the entries of one category in catalog order.
func (c Catalog) Items(category string) ([]Item, error) {
	var out []Item
	switch category {
	case CategoryDiscovery:
		for _, q := range c.Questions {
			out = append(out, Item{ID: q.ID, Category: category, Title: q.Question, Group: q.Category, Detail: q.Priority, Industries: q.Industries})
		}
	case CategoryUseCases:
		for _, u := range c.UseCases {
			out = append(out, Item{ID: u.ID, Category: category, Title: u.Name, Group: u.Category, Detail: u.Description})
		}
	case CategoryDifferentiators:
		for _, d := range c.Differentiators() {
			out = append(out, Item{ID: d.ID, Category: category, Title: d.Feature, Group: d.CompetitorName, Detail: d.ThoughtSpot})
		}
	case CategoryObjections:
		for _, o := range c.Objections {
			out = append(out, Item{ID: o.ID, Category: category, Title: o.Objection, Group: o.Category, Detail: o.Response})
		}
	default:
		return nil, fmt.Errorf("%w: unknown category %q", apperrors.ErrInvalidInput, category)
	}
	return out, nil
}

// Search filters a category by a case-insensitive substring and, for
// discovery questions, by industry.
func (c Catalog) Search(category, query, industry string) ([]Item, error) {
	items, err := c.Items(category)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	out := items[:0]
	for _, item := range items {
		if !item.matches(query) {
			continue
		}
		if industry != "" && category == CategoryDiscovery && !slices.Contains(item.Industries, industry) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Find looks an item up by id across every category.
func (c Catalog) Find(id string) (Item, bool) {
	for _, category := range Categories {
		items, _ := c.Items(category)
		for _, item := range items {
			if item.ID == id {
				return item, true
			}
		}
	}
	return Item{}, false
}
