// Package llm provides a streaming chat-completion transport against an
// OpenAI-compatible endpoint.
package llm

// Role tags a chat message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role/content entry of a chat prompt.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Chunk is one element of a response stream: either a text fragment or,
// as the final element before the channel closes, a mid-stream error.
type Chunk struct {
	Text string
	Err  error
}

// Collect drains a stream into the full response text. It returns the
// text received so far along with the stream error, if any.
func Collect(stream <-chan Chunk) (string, error) {
	var b []byte
	for chunk := range stream {
		if chunk.Err != nil {
			return string(b), chunk.Err
		}
		b = append(b, chunk.Text...)
	}
	return string(b), nil
}
