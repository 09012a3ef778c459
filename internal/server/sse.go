package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"okrpilot/internal/llm"
)

const overflowNotice = "Карта целей слишком большая для обработки. " +
	"Попробуйте загрузить часть целей или выбрать конкретную цель."

// streamSSE relays LLM chunks as server-sent events. Each fragment is
// split on newlines and every line is sent as its own JSON-encoded
// data event. A mid-stream failure becomes an in-band [ERROR] event;
// the stream always terminates with [DONE].
func streamSSE(w http.ResponseWriter, stream <-chan llm.Chunk) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	for chunk := range stream {
		if chunk.Err != nil {
			writeSSELine(w, "[ERROR] "+streamErrorMessage(chunk.Err))
			flush()
			break
		}
		for _, line := range strings.Split(chunk.Text, "\n") {
			writeSSELine(w, line)
		}
		flush()
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flush()
}

func writeSSELine(w http.ResponseWriter, line string) {
	encoded, err := json.Marshal(line)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", encoded)
}

func streamErrorMessage(err error) string {
	if errors.Is(err, llm.ErrContextOverflow) {
		return overflowNotice
	}
	return err.Error()
}
