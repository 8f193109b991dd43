package out

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	catalogdomain "demoprep/internal/modules/catalog/domain"
	"demoprep/internal/modules/export/domain"
	sessiondomain "demoprep/internal/modules/session/domain"
)

type JSONExporter struct{}

func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

type jsonContent struct {
	Discovery       []catalogdomain.Question       `json:"discovery"`
	UseCases        []catalogdomain.UseCase        `json:"usecases"`
	Differentiators []catalogdomain.Differentiator `json:"differentiators"`
	Objections      []catalogdomain.Objection      `json:"objections"`
}

type jsonDocument struct {
	ExportedAt time.Time             `json:"exportedAt"`
	AllItems   bool                  `json:"allItems"`
	Session    sessiondomain.Session `json:"session"`
	Content    jsonContent           `json:"content"`
}

func (JSONExporter) Format() domain.Format { return domain.FormatJSON }

func (JSONExporter) Export(_ context.Context, doc domain.Document) ([]byte, error) {
	out := jsonDocument{
		ExportedAt: doc.GeneratedAt.UTC(),
		AllItems:   doc.AllItems,
		Session:    doc.Session,
		Content: jsonContent{
			Discovery:       orEmpty(doc.Bundle.Discovery),
			UseCases:        orEmpty(doc.Bundle.UseCases),
			Differentiators: orEmpty(doc.Bundle.Differentiators),
			Objections:      orEmpty(doc.Bundle.Objections),
		},
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return append(raw, '\n'), nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
