package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexID is an upstream identifier that arrives either as a JSON string
// ("114") or as a number (114). It always compares as its string form.
type FlexID string

// UnmarshalJSON accepts string, integer and float forms of an id.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexID(v)
		return nil
	}
	var v json.Number
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", s)
	}
	*f = FlexID(v.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// MapSummary is one entry of the upstream maps listing
// (ITargetsTargetsMaps).
type MapSummary struct {
	ID          int     `json:"Id"`
	Name        string  `json:"Name"`
	Code        string  `json:"Code"`
	PeriodLabel string  `json:"PeriodLabel"`
	Achievement float64 `json:"AchievementPercentage"`
	Status      string  `json:"Status"`
	Notes       *string `json:"Notes"`
	PeriodStart *string `json:"PeriodStart"`
	PeriodEnd   *string `json:"PeriodEnd"`
}

// Person is a responsible employee reference.
type Person struct {
	ID   int    `json:"Id"`
	Name string `json:"Name"`
}

// Unit is a structural-unit reference.
type Unit struct {
	ID   int    `json:"Id"`
	Name string `json:"Name"`
}

// Period describes the planning period a goal belongs to.
type Period struct {
	Name      string  `json:"Name"`
	Code      *string `json:"Code"`
	TimeFrame *string `json:"TimeFrame"`
	StartDate *string `json:"StartDate"`
}

// LastAchievement is the most recent achievement report of a goal.
type LastAchievement struct {
	ID          int     `json:"Id"`
	Description *string `json:"Description"`
	ReportDate  *string `json:"ReportDate"`
}

// GoalStatus is the status block attached to an upstream map node.
type GoalStatus struct {
	State           string           `json:"State"`
	Name            string           `json:"Name"`
	Icon            *string          `json:"Icon"`
	LastAchievement *LastAchievement `json:"LastAchievementStatus"`
}

// MapNode is one node of an upstream map graph (GetGoalsMap), kept in
// its upstream shape for the flat context renderer.
type MapNode struct {
	TargetID    int         `json:"TargetId"`
	Code        string      `json:"Code"`
	Name        string      `json:"Name"`
	ParentID    *FlexID     `json:"ParentId"`
	ChildIDs    []FlexID    `json:"ChildIds"`
	Priority    string      `json:"Priority"`
	Progress    float64     `json:"Progress"`
	KeyResults  int         `json:"KeyResultCount"`
	Status      *GoalStatus `json:"Status"`
	Responsible *Person     `json:"Responsible"`
	Unit        *Unit       `json:"StructuralUnit"`
	Period      *Period     `json:"Period"`
}

// MapInfo is the map-level metadata of a map graph.
type MapInfo struct {
	ID       int     `json:"Id"`
	Name     string  `json:"Name"`
	Progress float64 `json:"Progress"`
}

// MapGraph is the resolved node+map graph of one goal map.
type MapGraph struct {
	Nodes []MapNode `json:"Nodes"`
	Map   MapInfo   `json:"Map"`
}

// NodeByTargetID returns the node with the given numeric target id, or
// nil when absent.
func (g *MapGraph) NodeByTargetID(id int) *MapNode {
	for i := range g.Nodes {
		if g.Nodes[i].TargetID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// TargetDetail is the extended record of a single goal
// (ITargetsTargets).
type TargetDetail struct {
	ID          int     `json:"Id"`
	Name        string  `json:"Name"`
	Code        string  `json:"Code"`
	StatusText  string  `json:"StatusDescription"`
	PeriodLabel string  `json:"PeriodLabel"`
	Achievement float64 `json:"AchievementPercentage"`
	PeriodStart *string `json:"PeriodStart"`
	PeriodEnd   *string `json:"PeriodEnd"`
	IsPersonal  bool    `json:"IsPersonal"`
	Description *string `json:"Description"`
	Notes       *string `json:"Notes"`
	Priority    string  `json:"Priority"`
}

// KeyResult is one measurable sub-metric of a goal (GetKeyResults).
// Upstream delivers every value as text, including the percentage.
type KeyResult struct {
	Description  string  `json:"Description"`
	Achievement  string  `json:"AchievementPercentage"`
	Metric       *string `json:"Metric"`
	InitialValue *string `json:"InitialValue"`
	PlannedValue *string `json:"PlannedValue"`
	ActualValue  *string `json:"ActualValue"`
}

// Coalesce returns s dereferenced, or fallback when s is nil or empty.
func Coalesce(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

// FormatTargetID renders a numeric target id the way child links
// reference it.
func FormatTargetID(id int) string {
	return strconv.Itoa(id)
}
