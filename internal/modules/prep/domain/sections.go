package domain

import "strings"

type SectionKey string

const (
	SectionBrief         SectionKey = "BRIEF"
	SectionDiscovery     SectionKey = "DISCOVERY"
	SectionTalkingPoints SectionKey = "TALKING_POINTS"
	SectionDemoFlow      SectionKey = "DEMO_FLOW"
)

var SectionOrder = []SectionKey{SectionBrief, SectionDiscovery, SectionTalkingPoints, SectionDemoFlow}

func (k SectionKey) Label() string {
	switch k {
	case SectionBrief:
		return "Pre-Call Research Brief"
	case SectionDiscovery:
		return "Targeted Discovery Questions"
	case SectionTalkingPoints:
		return "Personalized Talking Points"
	case SectionDemoFlow:
		return "Suggested Demo Flow"
	}
	return string(k)
}

// Result is a finished or interrupted generation.
type Result struct {
	Text        string
	Sections    map[SectionKey]string
	Interrupted bool
}

func (r Result) HasContent() bool {
	for _, body := range r.Sections {
		if strings.TrimSpace(body) != "" {
			return true
		}
	}
	return false
}

// ParseSections splits model output on lines that are exactly a section
// header. Text before the first header is dropped; a repeated header
// appends to the same section.
func ParseSections(text string) map[SectionKey]string {
	sections := make(map[SectionKey]*strings.Builder, len(SectionOrder))
	for _, key := range SectionOrder {
		sections[key] = &strings.Builder{}
	}
	var current *strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if key, ok := headerKey(line); ok {
			current = sections[key]
			continue
		}
		if current != nil {
			current.WriteString(line)
			current.WriteByte('\n')
		}
	}
	out := make(map[SectionKey]string, len(sections))
	for key, b := range sections {
		out[key] = b.String()
	}
	return out
}

func headerKey(line string) (SectionKey, bool) {
	name, ok := strings.CutPrefix(strings.TrimRight(line, "\r"), "## ")
	if !ok {
		return "", false
	}
	for _, key := range SectionOrder {
		if name == string(key) {
			return key, true
		}
	}
	return "", false
}
