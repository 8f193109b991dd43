package in

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sessiondto "demoprep/internal/modules/session/dto"
	sessionin "demoprep/internal/modules/session/port/in"
)

const dateLayout = "2006-01-02"

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Create(ctx context.Context, name, demoDate, dealStage string, industries, useCases []string) (sessiondto.SessionOutput, error) {
	input := sessiondto.CreateInput{Name: name, DealStage: dealStage, Industries: industries, UseCases: useCases}
	if demoDate != "" {
		parsed, err := parseDate(demoDate)
		if err != nil {
			return sessiondto.SessionOutput{}, err
		}
		input.DemoDate = parsed
	}
	return h.usecase.CreateSession(ctx, input)
}

func (h CLIHandler) List(ctx context.Context) ([]sessiondto.SummaryOutput, error) {
	return h.usecase.ListSessions(ctx)
}

func (h CLIHandler) Show(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) Use(ctx context.Context, id string) (sessiondto.SessionOutput, error) {
	return h.usecase.LoadSession(ctx, id)
}

func (h CLIHandler) Delete(ctx context.Context, id string) (sessiondto.DeleteOutput, error) {
	return h.usecase.DeleteSession(ctx, id)
}

func (h CLIHandler) Save(ctx context.Context) error {
	return h.usecase.SaveCurrentSession(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) error {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Usage(ctx context.Context) sessiondto.UsageOutput {
	return h.usecase.Usage(ctx)
}

// UpdateMetadata applies only the flags that were set.
func (h CLIHandler) UpdateMetadata(ctx context.Context, demoDate, dealStage *string, industries, useCases []string) (sessiondto.SessionOutput, error) {
	input := sessiondto.MetadataInput{DealStage: dealStage, Industries: industries, UseCases: useCases}
	if demoDate != nil {
		parsed, err := parseDate(*demoDate)
		if err != nil {
			return sessiondto.SessionOutput{}, err
		}
		input.DemoDate = &parsed
	}
	return h.usecase.UpdateSessionMetadata(ctx, input)
}

func (h CLIHandler) SetNote(ctx context.Context, itemID, content string) error {
	return h.usecase.SetItemNote(ctx, sessiondto.ItemNoteInput{ItemID: itemID, Content: content})
}

func (h CLIHandler) RemoveNote(ctx context.Context, itemID string) error {
	return h.usecase.RemoveItemNote(ctx, itemID)
}

func (h CLIHandler) GeneralNotes(ctx context.Context, content string) error {
	return h.usecase.UpdateGeneralNotes(ctx, content)
}

func (h CLIHandler) Toggle(ctx context.Context, category, itemID string) (sessiondto.SelectionOutput, error) {
	return h.usecase.ToggleSelection(ctx, sessiondto.SelectionInput{Category: category, ItemID: itemID})
}

func (h CLIHandler) SetWhy(ctx context.Context, question, answer string) error {
	return h.usecase.SetWhyAnswer(ctx, sessiondto.WhyInput{Question: question, Answer: answer})
}

// SetDocFields writes subsection fields given as field=value pairs. A value
// that parses as JSON (numbers, lists, objects) is stored decoded.
func (h CLIHandler) SetDocFields(ctx context.Context, useCaseID, subsection string, pairs []string) error {
	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("field %q must look like name=value", pair)
		}
		fields[key] = decodeValue(raw)
	}
	return h.usecase.UpdateUseCaseDoc(ctx, sessiondto.DocPatchInput{
		UseCaseID:  useCaseID,
		Structured: map[string]map[string]any{subsection: fields},
	})
}

func (h CLIHandler) SetDocNotes(ctx context.Context, useCaseID, content string, quickCapture []string) error {
	return h.usecase.UpdateUseCaseDoc(ctx, sessiondto.DocPatchInput{
		UseCaseID: useCaseID,
		Notes:     &sessiondto.DocNotesInput{Content: content, QuickCaptureItems: quickCapture},
	})
}

func (h CLIHandler) Doc(ctx context.Context, useCaseID string) (sessiondto.UseCaseDocOutput, error) {
	return h.usecase.UseCaseDoc(ctx, useCaseID)
}

func (h CLIHandler) Close(ctx context.Context) error {
	return h.usecase.Close(ctx)
}

func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("demo date %q: use YYYY-MM-DD or RFC 3339", value)
	}
	return parsed.UTC(), nil
}

func decodeValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	switch trimmed[0] {
	case '{', '[', '"':
	default:
		if trimmed != "true" && trimmed != "false" && !looksNumeric(trimmed) {
			return raw
		}
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil || decoded == nil {
		return raw
	}
	return decoded
}

func looksNumeric(s string) bool {
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return true
}
