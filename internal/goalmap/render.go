package goalmap

import (
	"fmt"
	"strings"

	"okrpilot/internal/domain"
)

// SelectedMarker is appended to the line of the goal the user picked.
const SelectedMarker = " [ВЫБРАННАЯ ЦЕЛЬ]"

const reportLimit = 300

// FormatMapForLLM renders a goal map as an indented markdown tree sized
// for a model prompt. When selectedGoalID resolves to a node its line is
// marked. Children are followed through ChildIDs; ids that do not
// resolve are skipped. A map with no root nodes is rendered flat in
// document order so inconsistent hierarchies still show every node.
func FormatMapForLLM(m *domain.GoalsMap, selectedGoalID string) string {
	lines := []string{
		"# Карта целей: " + m.MapName,
		fmt.Sprintf("Общий прогресс: %.1f%%", m.TotalProgress),
		fmt.Sprintf("Всего целей: %d", len(m.Nodes)),
		"",
	}

	byID := make(map[string]*domain.GoalNode, len(m.Nodes))
	for i := range m.Nodes {
		byID[m.Nodes[i].ID] = &m.Nodes[i]
	}

	// Child links come from the upstream system unvalidated and may form
	// cycles; each node is rendered at most once.
	visited := make(map[string]bool, len(m.Nodes))

	var render func(n *domain.GoalNode, depth int)
	render = func(n *domain.GoalNode, depth int) {
		if visited[n.ID] {
			return
		}
		visited[n.ID] = true

		prefix := strings.Repeat("  ", depth)
		if depth > 0 {
			prefix += "- "
		}
		marker := ""
		if selectedGoalID != "" && n.ID == selectedGoalID {
			marker = SelectedMarker
		}
		indent := "  " + strings.Repeat("  ", depth)

		lines = append(lines,
			fmt.Sprintf("%s**%s**: %s%s", prefix, n.Code, n.Name, marker),
			fmt.Sprintf("%sПрогресс: %.0f%% | Статус: %s | Приоритет: %s", indent, n.Progress, n.StatusName, n.Priority),
			fmt.Sprintf("%sОтветственный: %s | Период: %s", indent, n.Responsible, n.PeriodName),
		)
		if n.LastReport != nil && *n.LastReport != "" {
			lines = append(lines, indent+"Последний статус: "+truncate(*n.LastReport, reportLimit))
		}
		lines = append(lines, "")

		for _, childID := range n.ChildIDs {
			if child, ok := byID[childID]; ok {
				render(child, depth+1)
			}
		}
	}

	var roots []*domain.GoalNode
	for i := range m.Nodes {
		if m.Nodes[i].IsRoot() {
			roots = append(roots, &m.Nodes[i])
		}
	}

	if len(roots) > 0 {
		for _, root := range roots {
			render(root, 0)
		}
	} else {
		for i := range m.Nodes {
			render(&m.Nodes[i], 0)
		}
	}

	return strings.Join(lines, "\n")
}

// truncate cuts s to at most limit runes, appending an ellipsis when
// something was dropped. Rune-based because the domain text is Cyrillic.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
