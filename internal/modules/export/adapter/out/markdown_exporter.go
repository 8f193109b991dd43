package out

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"demoprep/internal/modules/export/domain"
	exportout "demoprep/internal/modules/export/port/out"
	sessiondomain "demoprep/internal/modules/session/domain"
	"demoprep/internal/platform/markdown"
)

const dateLayout = "2006-01-02"

var generatedBlock = markdown.Block{
	Start: "<!-- demoprep:begin -->",
	End:   "<!-- demoprep:end -->",
}

type MarkdownExporter struct{}

func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

var (
	_ exportout.Exporter = (*MarkdownExporter)(nil)
	_ exportout.Updater  = (*MarkdownExporter)(nil)
)

func (MarkdownExporter) Format() domain.Format { return domain.FormatMarkdown }

func (e MarkdownExporter) Export(ctx context.Context, doc domain.Document) ([]byte, error) {
	return e.Update(ctx, nil, doc)
}

// Update rewrites the generated block and the frontmatter keys it owns.
// Anything else in existing survives.
func (MarkdownExporter) Update(_ context.Context, existing []byte, doc domain.Document) ([]byte, error) {
	meta, body, err := markdown.SplitFrontmatter(string(existing))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		body = "# " + doc.Session.Name + " Demo Session\n"
	}
	body = generatedBlock.Replace(body, renderBody(doc))
	out, err := markdown.RenderFrontmatter(markdown.MergeFields(meta, frontmatter(doc)), body)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func frontmatter(doc domain.Document) []markdown.Field {
	s := doc.Session
	return []markdown.Field{
		{Key: "session", Value: s.Name},
		{Key: "session_id", Value: s.ID},
		{Key: "deal_stage", Value: s.Metadata.DealStage},
		{Key: "demo_date", Value: s.Metadata.DemoDate.Format(dateLayout)},
		{Key: "industries", Value: nonNil(s.Metadata.Industries)},
		{Key: "use_cases", Value: nonNil(s.Metadata.UseCases)},
		{Key: "items", Value: doc.Bundle.Total()},
		{Key: "exported_at", Value: doc.GeneratedAt.UTC().Format(time.RFC3339)},
	}
}

func renderBody(doc domain.Document) string {
	var b strings.Builder
	s := doc.Session

	b.WriteString("## Session Details\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Demo Date | %s |\n", s.Metadata.DemoDate.Format(dateLayout))
	fmt.Fprintf(&b, "| Deal Stage | %s |\n", cell(s.Metadata.DealStage))
	fmt.Fprintf(&b, "| Industries | %s |\n", cell(joinOrNone(s.Metadata.Industries)))
	fmt.Fprintf(&b, "| Use Cases | %s |\n", cell(joinOrNone(s.Metadata.UseCases)))

	if strings.TrimSpace(s.Notes.General) != "" {
		b.WriteString("\n## General Notes\n\n")
		b.WriteString(strings.TrimRight(s.Notes.General, "\n"))
		b.WriteString("\n")
	}

	if hasWhys(s) {
		b.WriteString("\n## 3 Why's\n")
		n := 0
		for _, q := range sessiondomain.WhyQuestions {
			answer := strings.TrimSpace(s.ThreeWhys[q])
			if answer == "" {
				continue
			}
			n++
			fmt.Fprintf(&b, "\n### %d. %s\n\n%s\n", n, domain.WhyLabel(q), answer)
		}
	}

	renderUseCaseDocs(&b, s)
	renderContent(&b, doc)

	b.WriteString("\n## Session Summary\n\n")
	fmt.Fprintf(&b, "- Selected Items: %d\n", s.SelectedCount())
	fmt.Fprintf(&b, "- Item Notes: %d\n", len(s.Notes.Items))
	fmt.Fprintf(&b, "- Discovery Questions: %d\n", len(doc.Bundle.Discovery))
	fmt.Fprintf(&b, "- Use Cases: %d\n", len(doc.Bundle.UseCases))
	fmt.Fprintf(&b, "- Differentiators: %d\n", len(doc.Bundle.Differentiators))
	fmt.Fprintf(&b, "- Objections: %d\n", len(doc.Bundle.Objections))
	if doc.AllItems {
		b.WriteString("\nNo items were selected, so the full library is included.\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderUseCaseDocs(b *strings.Builder, s sessiondomain.Session) {
	ids := make([]string, 0, len(s.UseCaseDocumentation))
	for id := range s.UseCaseDocumentation {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	header := false
	for _, id := range ids {
		doc := s.UseCaseDocumentation[id]
		var section strings.Builder
		for _, sub := range sessiondomain.Subsections {
			fields := doc.Structured[sub]
			keys := make([]string, 0, len(fields))
			for k, v := range fields {
				if formatValue(v) != "" {
					keys = append(keys, k)
				}
			}
			if len(keys) == 0 {
				continue
			}
			sort.Strings(keys)
			fmt.Fprintf(&section, "\n#### %s\n\n", domain.SubsectionLabel(sub))
			for _, k := range keys {
				fmt.Fprintf(&section, "- **%s**: %s\n", k, formatValue(fields[k]))
			}
		}
		if content := strings.TrimSpace(doc.Notes.Content); content != "" || len(doc.Notes.QuickCaptureItems) > 0 {
			section.WriteString("\n#### Notes\n\n")
			if content != "" {
				section.WriteString(content + "\n")
			}
			for _, item := range doc.Notes.QuickCaptureItems {
				fmt.Fprintf(&section, "- %s\n", item)
			}
		}
		if section.Len() == 0 {
			continue
		}
		if !header {
			b.WriteString("\n## Use Case Documentation\n")
			header = true
		}
		fmt.Fprintf(b, "\n### %s\n", id)
		b.WriteString(section.String())
	}
}

func renderContent(b *strings.Builder, doc domain.Document) {
	if len(doc.Bundle.Discovery) > 0 {
		b.WriteString("\n## Discovery Questions\n")
		for i, q := range doc.Bundle.Discovery {
			fmt.Fprintf(b, "\n### %d. %s\n\n", i+1, q.Question)
			meta := "Category: " + q.Category
			if q.Priority != "" {
				meta += " | Priority: " + q.Priority
			}
			fmt.Fprintf(b, "_%s_\n", meta)
			list(b, "Follow-up Questions", q.FollowUp)
			note(b, doc, q.ID)
		}
	}
	if len(doc.Bundle.UseCases) > 0 {
		b.WriteString("\n## Use Cases\n")
		for i, u := range doc.Bundle.UseCases {
			fmt.Fprintf(b, "\n### %d. %s\n\n_Category: %s_\n", i+1, u.Name, u.Category)
			if u.Description != "" {
				fmt.Fprintf(b, "\n%s\n", u.Description)
			}
			list(b, "Key Benefits", u.KeyBenefits)
			list(b, "Typical Challenges", u.TypicalChallenges)
			list(b, "Ideal For", u.IdealFor)
			list(b, "Demo Scenarios", u.DemoScenarios)
			note(b, doc, u.ID)
		}
	}
	if len(doc.Bundle.Differentiators) > 0 {
		b.WriteString("\n## Differentiators\n")
		for i, d := range doc.Bundle.Differentiators {
			fmt.Fprintf(b, "\n### %d. %s\n\n_Category: %s | vs %s_\n", i+1, d.Feature, d.Category, d.CompetitorName)
			if d.ThoughtSpot != "" {
				fmt.Fprintf(b, "\n**ThoughtSpot:** %s\n", d.ThoughtSpot)
			}
			if d.Competitor != "" {
				fmt.Fprintf(b, "\n**%s:** %s\n", d.CompetitorName, d.Competitor)
			}
			list(b, "Talking Points", d.TalkingPoints)
			if d.Demo != "" {
				fmt.Fprintf(b, "\n**Demo:** %s\n", d.Demo)
			}
			note(b, doc, d.ID)
		}
	}
	if len(doc.Bundle.Objections) > 0 {
		b.WriteString("\n## Objections\n")
		for i, o := range doc.Bundle.Objections {
			fmt.Fprintf(b, "\n### %d. \"%s\"\n\n_Category: %s_\n", i+1, o.Objection, o.Category)
			if o.Response != "" {
				fmt.Fprintf(b, "\n**Response:** %s\n", o.Response)
			}
			list(b, "Talking Points", o.TalkingPoints)
			list(b, "Discovery Questions", o.Questions)
			note(b, doc, o.ID)
		}
	}
}

func list(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s:**\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func note(b *strings.Builder, doc domain.Document, itemID string) {
	if content, ok := doc.NoteFor(itemID); ok {
		fmt.Fprintf(b, "\n> **Note:** %s\n", strings.ReplaceAll(content, "\n", "\n> "))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := formatValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := formatValue(val[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(val)
	}
}

func hasWhys(s sessiondomain.Session) bool {
	for _, answer := range s.ThreeWhys {
		if strings.TrimSpace(answer) != "" {
			return true
		}
	}
	return false
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}

func cell(v string) string {
	return strings.ReplaceAll(v, "|", `\|`)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
