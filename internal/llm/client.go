package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client produces a lazy stream of response fragments for a chat
// prompt. StreamChat fails before returning a channel on request or
// status errors; failures after streaming has begun are delivered as a
// final Chunk with Err set. The returned channel is always closed by
// the producer, including on consumer abandonment via ctx.
type Client interface {
	StreamChat(ctx context.Context, messages []Message) (<-chan Chunk, error)
}

// openAIClient implements Client against an OpenAI-compatible
// /chat/completions endpoint with stream enabled.
type openAIClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewOpenAIClient creates a streaming Client for the configured
// endpoint.
func NewOpenAIClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &openAIClient{
		cfg:      cfg,
		http:     &http.Client{},
		observer: observer,
	}
}

// chatRequest is the JSON body sent to POST /chat/completions.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// chatChunk is one decoded SSE payload of a streamed completion.
type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (c *openAIClient) StreamChat(ctx context.Context, messages []Message) (<-chan Chunk, error) {
	start := time.Now()

	data, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", ErrTransport, err)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: creating request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		failure := c.requestError(ctx, err)
		c.report(start, 0, failure)
		return nil, failure
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		failure := c.statusError(resp.StatusCode, body)
		c.report(start, 0, failure)
		return nil, failure
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer cancel()
		defer resp.Body.Close()

		fragments := 0
		err := c.relay(ctx, resp.Body, out, &fragments)
		c.report(start, fragments, err)
		if err != nil {
			select {
			case out <- Chunk{Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

// relay reads the SSE body line by line and forwards text deltas until
// the [DONE] sentinel, an error, or consumer abandonment.
func (c *openAIClient) relay(ctx context.Context, body io.Reader, out chan<- Chunk, fragments *int) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return nil
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return fmt.Errorf("%w: decoding stream payload: %v", ErrTransport, err)
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}

		select {
		case out <- Chunk{Text: chunk.Choices[0].Delta.Content}:
			*fragments++
		case <-ctx.Done():
			// Consumer walked away; release the connection.
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: reading stream: %v", ErrTransport, err)
	}
	return nil
}

// statusError classifies a non-200 response. A 400 that names the
// context window maps to ErrContextOverflow so callers can tell the
// user to narrow the selection.
func (c *openAIClient) statusError(status int, body []byte) error {
	lower := strings.ToLower(string(body))
	if status == http.StatusBadRequest &&
		(strings.Contains(lower, "context_length_exceeded") || strings.Contains(lower, "maximum context")) {
		return fmt.Errorf("%w: %s", ErrContextOverflow, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("%w: status %d: %s", ErrTransport, status, strings.TrimSpace(string(body)))
}

func (c *openAIClient) requestError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

func (c *openAIClient) report(start time.Time, fragments int, err error) {
	c.observer.OnStreamComplete(StreamEvent{
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Fragments: fragments,
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}
