package contextbuild

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okrpilot/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "обычный текст", "обычный текст"},
		{"literal newline", `первая\nвторая`, "первая\nвторая"},
		{"escaped backslash", `путь\\сюда`, `путь\сюда`},
		{"carriage return dropped", `текст\rещё`, "текстещё"},
		{"real newline untouched", "а\nб", "а\nб"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func sampleNodes() []domain.MapNode {
	icon := "🟡"
	return []domain.MapNode{
		{
			TargetID:    114,
			Code:        "Ц-1",
			Name:        "Рост выручки",
			ChildIDs:    []domain.FlexID{"115", "999"},
			Priority:    "Высокий",
			Progress:    42.5,
			KeyResults:  2,
			Responsible: &domain.Person{Name: "Иванов"},
			Unit:        &domain.Unit{Name: "Продажи"},
			Period:      &domain.Period{Name: "2025"},
			Status: &domain.GoalStatus{
				Name: "В работе",
				Icon: &icon,
				LastAchievement: &domain.LastAchievement{
					Description: strPtr(`Рост\nпродолжается`),
					ReportDate:  strPtr("2025-06-01"),
				},
			},
		},
		{
			TargetID: 115,
			Code:     "Ц-1.1",
			Name:     "Новые каналы",
			Priority: "Средний",
			Progress: 10,
		},
	}
}

func TestBuildMapContext(t *testing.T) {
	out := BuildMapContext(sampleNodes(), domain.MapInfo{Name: "Карта Арио", Progress: 55.5}, "2025 год")

	assert.Contains(t, out, "Карта целей: Карта Арио | Период: 2025 год | Прогресс: 55.5%")
	assert.Contains(t, out, "[Ц-1] Рост выручки")
	assert.Contains(t, out, "Ответственный: Иванов | Подразделение: Продажи")
	assert.Contains(t, out, "Период: 2025 | Приоритет: Высокий | Прогресс: 42.5% | КР: 2")
	assert.Contains(t, out, "Статус: В работе 🟡")
	assert.Contains(t, out, "---")

	// The report text is de-escaped before rendering.
	assert.Contains(t, out, "Отчёт (2025-06-01): Рост\nпродолжается")
}

func TestBuildMapContext_UnresolvedChildOmitted(t *testing.T) {
	out := BuildMapContext(sampleNodes(), domain.MapInfo{}, "")

	// Child 115 resolves to its code; the unknown id 999 is dropped.
	assert.Contains(t, out, "Дочерние: Ц-1.1")
	assert.NotContains(t, out, "999")
}

func TestBuildMapContext_MissingBlocksRenderPlaceholders(t *testing.T) {
	nodes := []domain.MapNode{{TargetID: 1, Code: "A", Name: "Без всего"}}
	out := BuildMapContext(nodes, domain.MapInfo{}, "")

	assert.Contains(t, out, "Ответственный: — | Подразделение: —")
	assert.Contains(t, out, "Статус: —")
	assert.Contains(t, out, "Дочерние: —")
	assert.NotContains(t, out, "Отчёт")
}

func TestBuildMapContext_TruncatesLongReport(t *testing.T) {
	nodes := sampleNodes()
	long := strings.Repeat("д", 600)
	nodes[0].Status.LastAchievement.Description = &long

	out := BuildMapContext(nodes, domain.MapInfo{}, "")
	require.Contains(t, out, strings.Repeat("д", 500)+"...")
	assert.NotContains(t, out, strings.Repeat("д", 501))
}

func TestBuildTargetContext(t *testing.T) {
	target := domain.TargetDetail{
		ID:          114,
		Code:        "Ц-1",
		Name:        "Рост выручки",
		StatusText:  "В работе",
		PeriodLabel: "2025 год",
		Achievement: 42.5,
		PeriodStart: strPtr("2025-01-01"),
		PeriodEnd:   strPtr("2025-12-31"),
		Description: strPtr(`Первая строка\nвторая строка`),
		Notes:       strPtr("Держать темп"),
		Priority:    "Высокий",
	}
	krs := []domain.KeyResult{
		{
			Description:  "Подключить 5 партнёров",
			Achievement:  "60",
			Metric:       strPtr("шт"),
			InitialValue: strPtr("0"),
			PlannedValue: strPtr("5"),
			ActualValue:  strPtr("3"),
		},
	}

	out := BuildTargetContext(target, krs)

	assert.Contains(t, out, "Цель: [Ц-1] Рост выручки")
	assert.Contains(t, out, "Период: 2025 год (2025-01-01 — 2025-12-31)")
	assert.Contains(t, out, "Статус: В работе | Прогресс: 42.5% | Приоритет: Высокий")
	assert.Contains(t, out, "Описание:\nПервая строка\nвторая строка")
	assert.Contains(t, out, "Заметки руководства:\nДержать темп")
	assert.Contains(t, out, "- Подключить 5 партнёров: 60%")
	assert.Contains(t, out, "(Метрика: шт | Нач: 0 | План: 5 | Факт: 3)")
}

func TestBuildTargetContext_OmitsEmptySections(t *testing.T) {
	out := BuildTargetContext(domain.TargetDetail{Code: "A", Name: "Цель"}, nil)

	assert.NotContains(t, out, "Описание:")
	assert.NotContains(t, out, "Заметки руководства:")
	assert.NotContains(t, out, "Ключевые результаты:")
	assert.Contains(t, out, "Период:  (— — —)")
}
