package domain

// GoalNode is one normalized node of a goal hierarchy. Nodes are built by
// the goalmap parser and never mutated afterwards.
type GoalNode struct {
	ID          string   `json:"id"`
	TargetID    int      `json:"target_id"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	ParentID    *string  `json:"parent_id"`
	ChildIDs    []string `json:"child_ids"`
	Priority    string   `json:"priority"`
	Progress    float64  `json:"progress"`
	StatusName  string   `json:"status_name"`
	StatusState string   `json:"status_state"`
	StatusIcon  *string  `json:"status_icon"`
	Responsible string   `json:"responsible_name"`
	Unit        string   `json:"structural_unit"`
	PeriodName  string   `json:"period_name"`
	PeriodFrame string   `json:"period_timeframe"`
	KeyResults  int      `json:"key_result_count"`
	LastReport  *string  `json:"last_achievement_description"`
}

// IsRoot reports whether the node sits at the top of its map.
func (n *GoalNode) IsRoot() bool {
	return n.ParentID == nil
}

// GoalsMap is a fully parsed goal-map document. Node order follows the
// upstream document and is not guaranteed to be hierarchical.
type GoalsMap struct {
	Nodes         []GoalNode `json:"nodes"`
	MapName       string     `json:"map_name"`
	MapID         *int       `json:"map_id"`
	TotalProgress float64    `json:"total_progress"`
}

// GoalByID returns the first node with the given id, or nil if no node
// matches. Ids are expected to be unique within one map; the first match
// wins if that is violated.
func (m *GoalsMap) GoalByID(id string) *GoalNode {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			return &m.Nodes[i]
		}
	}
	return nil
}
