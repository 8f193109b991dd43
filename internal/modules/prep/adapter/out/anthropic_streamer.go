package out

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	prepout "demoprep/internal/modules/prep/port/out"
	apperrors "demoprep/internal/platform/errors"
)

const (
	DefaultModel     = "claude-sonnet-4-6"
	DefaultMaxTokens = 4000
)

type AnthropicStreamer struct {
	apiKey    string
	model     string
	maxTokens int64
	opts      []option.RequestOption
}

// NewAnthropicStreamer does not fail on a missing key; Stream reports
// ErrNoAPIKey so the rest of the application can run without one.
func NewAnthropicStreamer(apiKey, model string, maxTokens int64, opts ...option.RequestOption) prepout.Streamer {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &AnthropicStreamer{apiKey: strings.TrimSpace(apiKey), model: model, maxTokens: maxTokens, opts: opts}
}

func (s *AnthropicStreamer) Stream(ctx context.Context, system, user string, onChunk func(string)) error {
	if s.apiKey == "" {
		return apperrors.ErrNoAPIKey
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(s.apiKey)}, s.opts...)...)

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
			onChunk(text.Text)
		}
	}
	if err := stream.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", apperrors.ErrPrepAPI, err)
	}
	return nil
}
