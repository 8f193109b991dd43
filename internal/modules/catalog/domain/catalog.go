package domain

import (
	"fmt"
	"sort"
	"strings"

	apperrors "demoprep/internal/platform/errors"
)

type Question struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Category   string   `json:"category"`
	Priority   string   `json:"priority,omitempty"`
	FollowUp   []string `json:"followUp,omitempty"`
	Industries []string `json:"industries,omitempty"`
}

type UseCase struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Category          string   `json:"category"`
	Description       string   `json:"description,omitempty"`
	KeyBenefits       []string `json:"keyBenefits,omitempty"`
	TypicalChallenges []string `json:"typicalChallenges,omitempty"`
	IdealFor          []string `json:"idealFor,omitempty"`
	DemoScenarios     []string `json:"demoScenarios,omitempty"`
}

type Differentiator struct {
	ID            string   `json:"id"`
	Feature       string   `json:"feature"`
	Category      string   `json:"category"`
	ThoughtSpot   string   `json:"thoughtspot,omitempty"`
	Competitor    string   `json:"competitor,omitempty"`
	TalkingPoints []string `json:"talkingPoints,omitempty"`
	Demo          string   `json:"demo,omitempty"`

	// Set when flattened out of a Competitor.
	CompetitorID   string `json:"competitorId,omitempty"`
	CompetitorName string `json:"competitorName,omitempty"`
}

type Competitor struct {
	Name            string           `json:"name"`
	Differentiators []Differentiator `json:"differentiators"`
}

type Objection struct {
	ID            string   `json:"id"`
	Objection     string   `json:"objection"`
	Category      string   `json:"category"`
	Response      string   `json:"response,omitempty"`
	TalkingPoints []string `json:"talkingPoints,omitempty"`
	Questions     []string `json:"questions,omitempty"`
}

// Catalog is the read-only reference content sessions select from and
// annotate.
type Catalog struct {
	Questions   []Question            `json:"questions"`
	UseCases    []UseCase             `json:"useCases"`
	Competitors map[string]Competitor `json:"competitors"`
	Objections  []Objection           `json:"objections"`
}

// Differentiators flattens every competitor's differentiators, competitors
// ordered by id.
func (c Catalog) Differentiators() []Differentiator {
	ids := make([]string, 0, len(c.Competitors))
	for id := range c.Competitors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []Differentiator
	for _, id := range ids {
		competitor := c.Competitors[id]
		for _, d := range competitor.Differentiators {
			d.CompetitorID = id
			d.CompetitorName = competitor.Name
			out = append(out, d)
		}
	}
	return out
}

// Validate checks that every item has an id and that ids are unique within
// their category.
func (c Catalog) Validate() error {
	check := func(kind string, ids []string) error {
		seen := make(map[string]struct{}, len(ids))
		for i, id := range ids {
			if strings.TrimSpace(id) == "" {
				return fmt.Errorf("%w: %s #%d has no id", apperrors.ErrInvalidInput, kind, i+1)
			}
			if _, ok := seen[id]; ok {
				return fmt.Errorf("%w: duplicate %s id %q", apperrors.ErrInvalidInput, kind, id)
			}
			seen[id] = struct{}{}
		}
		return nil
	}
	questions := make([]string, 0, len(c.Questions))
	for _, q := range c.Questions {
		questions = append(questions, q.ID)
	}
	useCases := make([]string, 0, len(c.UseCases))
	for _, u := range c.UseCases {
		useCases = append(useCases, u.ID)
	}
	var differentiators []string
	for _, d := range c.Differentiators() {
		differentiators = append(differentiators, d.ID)
	}
	objections := make([]string, 0, len(c.Objections))
	for _, o := range c.Objections {
		objections = append(objections, o.ID)
	}
	for _, group := range []struct {
		kind string
		ids  []string
	}{
		{"question", questions},
		{"use case", useCases},
		{"differentiator", differentiators},
		{"objection", objections},
	} {
		if err := check(group.kind, group.ids); err != nil {
			return err
		}
	}
	return nil
}

// Industries lists the distinct industries discovery questions are tagged with.
func (c Catalog) Industries() []string {
	seen := map[string]struct{}{}
	for _, q := range c.Questions {
		for _, industry := range q.Industries {
			seen[industry] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for industry := range seen {
		out = append(out, industry)
	}
	sort.Strings(out)
	return out
}
