// Package goalmap parses raw goal-map JSON exported from the Targets
// system into normalized domain values and renders them for the model.
package goalmap

import (
	"fmt"
	"strconv"
	"strings"

	"okrpilot/internal/domain"
)

// RawNode is one node record exactly as it appears in an upstream
// document. Scalar fields that upstream emits with varying JSON types
// are held as any and coerced during normalization.
type RawNode struct {
	ID             any        `json:"Id"`
	TargetID       any        `json:"TargetId"`
	Code           string     `json:"Code"`
	Name           string     `json:"Name"`
	ParentID       any        `json:"ParentId"`
	ChildIDs       []any      `json:"ChildIds"`
	Priority       string     `json:"Priority"`
	Progress       any        `json:"Progress"`
	KeyResultCount any        `json:"KeyResultCount"`
	Status         *RawStatus `json:"Status"`
	Responsible    *RawRef    `json:"Responsible"`
	StructuralUnit *RawRef    `json:"StructuralUnit"`
	Period         *RawPeriod `json:"Period"`
}

// RawStatus is the optional status block of a raw node.
type RawStatus struct {
	Name            string          `json:"Name"`
	State           string          `json:"State"`
	Icon            *string         `json:"Icon"`
	LastAchievement *RawAchievement `json:"LastAchievementStatus"`
}

// RawAchievement is the optional last achievement report of a status.
type RawAchievement struct {
	Description *string `json:"Description"`
	ReportDate  *string `json:"ReportDate"`
}

// RawRef is a named reference (responsible person, structural unit).
type RawRef struct {
	Name string `json:"Name"`
}

// RawPeriod is the optional period block of a raw node.
type RawPeriod struct {
	Name      string `json:"Name"`
	TimeFrame string `json:"TimeFrame"`
}

// NormalizeNode converts one raw record into a GoalNode. Missing
// optional blocks contribute empty values; id-like fields are coerced to
// strings; Progress accepts numeric strings. The only failure mode is a
// value that cannot be coerced at all.
func NormalizeNode(raw RawNode) (domain.GoalNode, error) {
	progress, err := coerceFloat(raw.Progress)
	if err != nil {
		return domain.GoalNode{}, fmt.Errorf("field Progress: %v", err)
	}
	targetID, err := coerceInt(raw.TargetID)
	if err != nil {
		return domain.GoalNode{}, fmt.Errorf("field TargetId: %v", err)
	}
	keyResults, err := coerceInt(raw.KeyResultCount)
	if err != nil {
		return domain.GoalNode{}, fmt.Errorf("field KeyResultCount: %v", err)
	}

	var parentID *string
	if raw.ParentID != nil {
		s := asString(raw.ParentID)
		parentID = &s
	}

	childIDs := make([]string, 0, len(raw.ChildIDs))
	for _, c := range raw.ChildIDs {
		childIDs = append(childIDs, asString(c))
	}

	node := domain.GoalNode{
		ID:         asString(raw.ID),
		TargetID:   targetID,
		Code:       raw.Code,
		Name:       raw.Name,
		ParentID:   parentID,
		ChildIDs:   childIDs,
		Priority:   raw.Priority,
		Progress:   progress,
		KeyResults: keyResults,
	}

	if raw.Status != nil {
		node.StatusName = raw.Status.Name
		node.StatusState = raw.Status.State
		node.StatusIcon = raw.Status.Icon
		if raw.Status.LastAchievement != nil {
			node.LastReport = raw.Status.LastAchievement.Description
		}
	}
	if raw.Responsible != nil {
		node.Responsible = raw.Responsible.Name
	}
	if raw.StructuralUnit != nil {
		node.Unit = raw.StructuralUnit.Name
	}
	if raw.Period != nil {
		node.PeriodName = raw.Period.Name
		node.PeriodFrame = raw.Period.TimeFrame
	}

	return node, nil
}

// asString renders a scalar JSON value as a string. Numbers lose no
// precision; nil becomes the empty string.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// coerceFloat converts a JSON value to a float64. Absent values default
// to 0; numeric strings are accepted.
func coerceFloat(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to a number", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to a number", v)
	}
}

// coerceInt converts a JSON value to an int with the same tolerance as
// coerceFloat; fractional parts are discarded.
func coerceInt(v any) (int, error) {
	f, err := coerceFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
