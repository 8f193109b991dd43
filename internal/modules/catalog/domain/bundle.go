package domain

import "slices"

// Selection is the set of chosen item ids per category, as stored on a
// session.
type Selection struct {
	Discovery       []string
	UseCases        []string
	Differentiators []string
	Objections      []string
}

func (s Selection) Empty() bool {
	return len(s.Discovery) == 0 && len(s.UseCases) == 0 && len(s.Differentiators) == 0 && len(s.Objections) == 0
}

// Bundle is catalog content resolved for one export, in catalog order.
type Bundle struct {
	Discovery       []Question
	UseCases        []UseCase
	Differentiators []Differentiator
	Objections      []Objection
}

func (b Bundle) Total() int {
	return len(b.Discovery) + len(b.UseCases) + len(b.Differentiators) + len(b.Objections)
}

// Resolve joins a selection against the catalog. With nothing selected in
// any category the whole catalog is returned. Unknown ids are ignored.
func (c Catalog) Resolve(sel Selection) Bundle {
	if sel.Empty() {
		return Bundle{
			Discovery:       slices.Clone(c.Questions),
			UseCases:        slices.Clone(c.UseCases),
			Differentiators: c.Differentiators(),
			Objections:      slices.Clone(c.Objections),
		}
	}
	var b Bundle
	for _, q := range c.Questions {
		if slices.Contains(sel.Discovery, q.ID) {
			b.Discovery = append(b.Discovery, q)
		}
	}
	for _, u := range c.UseCases {
		if slices.Contains(sel.UseCases, u.ID) {
			b.UseCases = append(b.UseCases, u)
		}
	}
	for _, d := range c.Differentiators() {
		if slices.Contains(sel.Differentiators, d.ID) {
			b.Differentiators = append(b.Differentiators, d)
		}
	}
	for _, o := range c.Objections {
		if slices.Contains(sel.Objections, o.ID) {
			b.Objections = append(b.Objections, o)
		}
	}
	return b
}
