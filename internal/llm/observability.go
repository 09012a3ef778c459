package llm

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// StreamEvent records metadata about a single completed stream.
type StreamEvent struct {
	Model     string
	LatencyMs int64
	Fragments int
	Success   bool
	ErrorCode string
}

// Observer receives events about finished streams for logging and
// metrics.
type Observer interface {
	OnStreamComplete(event StreamEvent)
}

// LogObserver writes stream events to an io.Writer.
type LogObserver struct {
	w io.Writer
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{w: w}
}

func (o *LogObserver) OnStreamComplete(event StreamEvent) {
	ts := time.Now().UTC().Format(time.RFC3339)
	status := "ok"
	if !event.Success {
		status = "err:" + event.ErrorCode
	}
	fmt.Fprintf(o.w, "[%s] llm_stream model=%s latency_ms=%d fragments=%d status=%s\n",
		ts, event.Model, event.LatencyMs, event.Fragments, status)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnStreamComplete(StreamEvent) {}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrContextOverflow):
		return "CONTEXT_OVERFLOW"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	default:
		return "TRANSPORT"
	}
}
