package out

import "context"

// Streamer sends one prompt pair to a language model and reports text as it
// arrives. It returns when the response ends, fails, or ctx is cancelled.
type Streamer interface {
	Stream(ctx context.Context, system, user string, onChunk func(string)) error
}
