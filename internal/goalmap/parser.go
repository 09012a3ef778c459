package goalmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"okrpilot/internal/domain"
)

// ErrMalformedInput indicates the supplied text is not a goal-map
// document: invalid JSON, not an object, or missing the node collection.
var ErrMalformedInput = errors.New("malformed goals map")

// rawMapMeta is the optional map-level metadata block.
type rawMapMeta struct {
	ID       *int    `json:"Id"`
	Name     string  `json:"Name"`
	Progress float64 `json:"Progress"`
}

// Parse builds a GoalsMap from raw JSON text. Upstream responses come in
// two shapes: wrapped in a Payload envelope or bare; both are accepted.
// Any structural violation, and any node that cannot be normalized,
// fails with ErrMalformedInput.
func Parse(data []byte) (*domain.GoalsMap, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: document must be a JSON object", ErrMalformedInput)
		}
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedInput, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: document must be a JSON object", ErrMalformedInput)
	}

	// Classify the document shape: enveloped or bare.
	body := root
	if raw, ok := root["Payload"]; ok && !isNull(raw) {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
			return nil, fmt.Errorf("%w: 'Payload' must be an object", ErrMalformedInput)
		}
		body = payload
	}

	rawNodes, ok := body["Nodes"]
	if !ok || isNull(rawNodes) {
		return nil, fmt.Errorf("%w: missing 'Nodes' collection", ErrMalformedInput)
	}
	var nodeList []RawNode
	if err := json.Unmarshal(rawNodes, &nodeList); err != nil {
		return nil, fmt.Errorf("%w: 'Nodes' must be an array of node objects", ErrMalformedInput)
	}

	nodes := make([]domain.GoalNode, 0, len(nodeList))
	for i, raw := range nodeList {
		node, err := NormalizeNode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", ErrMalformedInput, i, err)
		}
		nodes = append(nodes, node)
	}

	m := &domain.GoalsMap{Nodes: nodes}
	if raw, ok := body["Map"]; ok && !isNull(raw) {
		var meta rawMapMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("%w: 'Map' must be an object", ErrMalformedInput)
		}
		m.MapName = meta.Name
		m.MapID = meta.ID
		m.TotalProgress = meta.Progress
	}

	return m, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
