// Package contextbuild renders upstream-shaped map and target data into
// compact text blocks sized for a model prompt.
package contextbuild

import (
	"fmt"
	"strconv"
	"strings"

	"okrpilot/internal/domain"
)

const (
	// blockDelimiter separates per-goal blocks in a map context.
	blockDelimiter = "---"

	mapReportLimit = 500

	missing = "—"
)

// BuildMapContext renders a map graph as a flat sequence of labeled goal
// blocks: one header line, then for every node its people, period,
// status, resolved child codes and the latest report. Child ids that do
// not resolve within the graph are left out of the child list.
func BuildMapContext(nodes []domain.MapNode, info domain.MapInfo, periodLabel string) string {
	var lines []string
	lines = append(lines, fmt.Sprintf(
		"Карта целей: %s | Период: %s | Прогресс: %s%%\n",
		info.Name, periodLabel, formatFloat(info.Progress)))

	byID := make(map[string]*domain.MapNode, len(nodes))
	for i := range nodes {
		byID[domain.FormatTargetID(nodes[i].TargetID)] = &nodes[i]
	}

	for i := range nodes {
		node := &nodes[i]
		lines = append(lines, fmt.Sprintf("[%s] %s", node.Code, node.Name))

		responsible := missing
		if node.Responsible != nil {
			responsible = node.Responsible.Name
		}
		unit := missing
		if node.Unit != nil {
			unit = node.Unit.Name
		}
		lines = append(lines, fmt.Sprintf("  Ответственный: %s | Подразделение: %s", responsible, unit))

		period := missing
		if node.Period != nil {
			period = node.Period.Name
		}
		lines = append(lines, fmt.Sprintf(
			"  Период: %s | Приоритет: %s | Прогресс: %s%% | КР: %d",
			period, node.Priority, formatFloat(node.Progress), node.KeyResults))

		statusName := missing
		statusIcon := ""
		if node.Status != nil {
			statusName = node.Status.Name
			if node.Status.Icon != nil && *node.Status.Icon != "" {
				statusIcon = " " + *node.Status.Icon
			}
		}
		lines = append(lines, "  Статус: "+statusName+statusIcon)

		childList := missing
		if len(node.ChildIDs) > 0 {
			var codes []string
			for _, childID := range node.ChildIDs {
				if child, ok := byID[childID.String()]; ok {
					codes = append(codes, child.Code)
				}
			}
			if len(codes) > 0 {
				childList = strings.Join(codes, ", ")
			}
		}
		lines = append(lines, "  Дочерние: "+childList)

		if node.Status != nil && node.Status.LastAchievement != nil {
			las := node.Status.LastAchievement
			description := NormalizeText(domain.Coalesce(las.Description, ""))
			if description != "" {
				reportDate := domain.Coalesce(las.ReportDate, missing)
				lines = append(lines, fmt.Sprintf("  Отчёт (%s): %s", reportDate, truncate(description, mapReportLimit)))
			}
		}

		lines = append(lines, blockDelimiter+"\n")
	}

	return strings.Join(lines, "\n")
}

// BuildTargetContext renders one goal with its key results: header,
// period window, status line, free-text description and management
// notes (both de-escaped), then the itemized key-result list.
func BuildTargetContext(target domain.TargetDetail, keyResults []domain.KeyResult) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("Цель: [%s] %s", target.Code, target.Name))
	lines = append(lines, fmt.Sprintf("Период: %s (%s — %s)",
		target.PeriodLabel,
		domain.Coalesce(target.PeriodStart, missing),
		domain.Coalesce(target.PeriodEnd, missing)))
	lines = append(lines, fmt.Sprintf("Статус: %s | Прогресс: %s%% | Приоритет: %s\n",
		target.StatusText, formatFloat(target.Achievement), target.Priority))

	if description := NormalizeText(domain.Coalesce(target.Description, "")); description != "" {
		lines = append(lines, "Описание:", description, "")
	}
	if notes := NormalizeText(domain.Coalesce(target.Notes, "")); notes != "" {
		lines = append(lines, "Заметки руководства:", notes, "")
	}

	if len(keyResults) > 0 {
		lines = append(lines, "Ключевые результаты:")
		for _, kr := range keyResults {
			lines = append(lines, fmt.Sprintf("- %s: %s%%", kr.Description, kr.Achievement))
			lines = append(lines, fmt.Sprintf("  (Метрика: %s | Нач: %s | План: %s | Факт: %s)",
				domain.Coalesce(kr.Metric, missing),
				domain.Coalesce(kr.InitialValue, missing),
				domain.Coalesce(kr.PlannedValue, missing),
				domain.Coalesce(kr.ActualValue, missing)))
		}
	}

	return strings.Join(lines, "\n")
}

// NormalizeText undoes the double-encoding of upstream free-text fields:
// literal \n becomes a real line break, literal \\ a single backslash,
// and literal \r is dropped. Real whitespace is left alone.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	result := strings.ReplaceAll(text, "\\n", "\n")
	result = strings.ReplaceAll(result, "\\\\", "\\")
	result = strings.ReplaceAll(result, "\\r", "")
	return result
}

// formatFloat renders a percentage value without a forced decimal tail.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// truncate cuts s to at most limit runes, rune-based for Cyrillic text.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
