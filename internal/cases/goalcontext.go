package cases

import (
	"fmt"
	"strings"

	"okrpilot/internal/domain"
)

// goalContext renders the selected goal as a labeled block, followed by
// its latest achievement report and the supplementary document text
// when either is available.
func goalContext(goal *domain.GoalNode, docxText string) string {
	parts := []string{
		"## Выбранная цель:",
		"Код: " + goal.Code,
		"Название: " + goal.Name,
		fmt.Sprintf("Прогресс: %.0f%%", goal.Progress),
		"Статус: " + goal.StatusName,
		"Приоритет: " + goal.Priority,
		"Ответственный: " + goal.Responsible,
		"Период: " + goal.PeriodName,
		fmt.Sprintf("Ключевых результатов: %d", goal.KeyResults),
	}
	if goal.LastReport != nil && *goal.LastReport != "" {
		parts = append(parts, "\nПоследний отчёт о достижении:\n"+*goal.LastReport)
	}
	if docxText != "" {
		parts = append(parts, "\n## Детальное описание цели (из DOCX):\n"+docxText)
	}
	return strings.Join(parts, "\n")
}
