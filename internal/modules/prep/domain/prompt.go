package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	catalogdomain "demoprep/internal/modules/catalog/domain"
	apperrors "demoprep/internal/platform/errors"
)

// Inputs describe the prospect a brief is generated for.
type Inputs struct {
	CompanyName       string
	LinkedInProfiles  []string
	AdditionalContext string
}

func (in Inputs) Validate() error {
	if strings.TrimSpace(in.CompanyName) == "" {
		return fmt.Errorf("%w: company name is required", apperrors.ErrValidation)
	}
	return nil
}

// Profiles returns the non-blank profiles in their original order.
func (in Inputs) Profiles() []string {
	out := make([]string, 0, len(in.LinkedInProfiles))
	for _, p := range in.LinkedInProfiles {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

const instructions = `When given a prospect's details, write a personalized prep brief. Use EXACTLY these four section headers, in this order, each on its own line. Write nothing before the first header.

## BRIEF
Two or three paragraphs: what the company does, what the stakeholders care about judging by their profiles, the analytics pain they most likely have, and the angle to lead with for this prospect.

## DISCOVERY
The 8-10 most relevant discovery questions from the library, reworded for this prospect. Number them and follow each with one or two sentences on why it matters here.

## TALKING_POINTS
5-7 differentiators and objection responses from the library, reframed for this prospect, as bullet points.

## DEMO_FLOW
A 4-5 step demo sequence. For each step name the use case, what to show, and why it fits this prospect.`

// SystemPrompt embeds the whole reference library so the model can pick
// from it.
func SystemPrompt(c catalogdomain.Catalog) (string, error) {
	var b strings.Builder
	b.WriteString("You help sales engineers prepare demos tailored to a specific prospect.\n\n")
	b.WriteString("This is the sales content library you can draw from:\n\n")
	for _, block := range []struct {
		title string
		value any
	}{
		{"DISCOVERY QUESTIONS", c.Questions},
		{"COMPETITIVE DIFFERENTIATORS", c.Competitors},
		{"OBJECTION HANDLING", c.Objections},
		{"USE CASES", c.UseCases},
	} {
		raw, err := json.MarshalIndent(block.value, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", strings.ToLower(block.title), err)
		}
		fmt.Fprintf(&b, "%s:\n%s\n\n", block.title, raw)
	}
	b.WriteString(instructions)
	return b.String(), nil
}

func UserPrompt(in Inputs) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n\n", in.CompanyName)
	if profiles := in.Profiles(); len(profiles) > 0 {
		b.WriteString("Stakeholder LinkedIn Profiles:\n")
		for i, p := range profiles {
			if i > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "--- LinkedIn Profile %d ---\n%s", i+1, p)
		}
		b.WriteString("\n\n")
	}
	if strings.TrimSpace(in.AdditionalContext) != "" {
		fmt.Fprintf(&b, "Additional Context:\n%s\n\n", in.AdditionalContext)
	}
	b.WriteString("Generate the personalized prep brief.")
	return b.String()
}
