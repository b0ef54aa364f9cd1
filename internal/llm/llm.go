// Package llm provides the Generator and Embedder capability adapters:
// an Ollama HTTP client (default) and an OpenAI client.
//
// Generation timeouts are a first-class recoverable outcome: both adapters
// classify them as ErrTimeout so the answer pipeline can substitute a fixed
// user-facing message instead of failing the request.
package llm

import (
	"context"
	"errors"
	"net"
)

// ErrTimeout indicates the generator did not answer within the configured
// budget. Checked with errors.Is().
var ErrTimeout = errors.New("generation timed out")

// Options are the sampling options passed to the generator.
type Options struct {
	Temperature   float32
	TopP          float32
	RepeatPenalty float32
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
