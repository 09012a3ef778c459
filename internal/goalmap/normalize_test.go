package goalmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNode_FullRecord(t *testing.T) {
	icon := "🟢"
	report := "Идёт по плану"
	raw := RawNode{
		ID:             "114",
		TargetID:       float64(114),
		Code:           "Ц-1",
		Name:           "Увеличить выручку",
		ParentID:       float64(100),
		ChildIDs:       []any{float64(115), "116"},
		Priority:       "Высокий",
		Progress:       float64(42.5),
		KeyResultCount: float64(3),
		Status: &RawStatus{
			Name:  "В работе",
			State: "InProgress",
			Icon:  &icon,
			LastAchievement: &RawAchievement{
				Description: &report,
			},
		},
		Responsible:    &RawRef{Name: "Иванов И.И."},
		StructuralUnit: &RawRef{Name: "Отдел продаж"},
		Period:         &RawPeriod{Name: "2025", TimeFrame: "Year"},
	}

	node, err := NormalizeNode(raw)
	require.NoError(t, err)

	assert.Equal(t, "114", node.ID)
	assert.Equal(t, 114, node.TargetID)
	assert.Equal(t, "Ц-1", node.Code)
	require.NotNil(t, node.ParentID)
	assert.Equal(t, "100", *node.ParentID)
	assert.Equal(t, []string{"115", "116"}, node.ChildIDs)
	assert.Equal(t, 42.5, node.Progress)
	assert.Equal(t, 3, node.KeyResults)
	assert.Equal(t, "В работе", node.StatusName)
	assert.Equal(t, "InProgress", node.StatusState)
	require.NotNil(t, node.LastReport)
	assert.Equal(t, "Идёт по плану", *node.LastReport)
	assert.Equal(t, "Иванов И.И.", node.Responsible)
	assert.Equal(t, "Отдел продаж", node.Unit)
	assert.Equal(t, "2025", node.PeriodName)
	assert.Equal(t, "Year", node.PeriodFrame)
}

func TestNormalizeNode_MissingOptionalBlocks(t *testing.T) {
	node, err := NormalizeNode(RawNode{ID: "1", Name: "Цель"})
	require.NoError(t, err)

	assert.Equal(t, "1", node.ID)
	assert.Equal(t, 0, node.TargetID)
	assert.Nil(t, node.ParentID)
	assert.Empty(t, node.ChildIDs)
	assert.Zero(t, node.Progress)
	assert.Empty(t, node.StatusName)
	assert.Nil(t, node.StatusIcon)
	assert.Nil(t, node.LastReport)
	assert.Empty(t, node.Responsible)
	assert.Empty(t, node.Unit)
	assert.Empty(t, node.PeriodName)
}

func TestNormalizeNode_ProgressAsNumericString(t *testing.T) {
	node, err := NormalizeNode(RawNode{ID: "1", Progress: "42.5"})
	require.NoError(t, err)
	assert.Equal(t, 42.5, node.Progress)
}

func TestNormalizeNode_ProgressNotNumeric(t *testing.T) {
	_, err := NormalizeNode(RawNode{ID: "1", Progress: "n/a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Progress")
}

func TestNormalizeNode_NumericIDsBecomeStrings(t *testing.T) {
	node, err := NormalizeNode(RawNode{ID: float64(7), ParentID: "root"})
	require.NoError(t, err)
	assert.Equal(t, "7", node.ID)
	require.NotNil(t, node.ParentID)
	assert.Equal(t, "root", *node.ParentID)
}

func TestNormalizeNode_Idempotent(t *testing.T) {
	raw := RawNode{ID: "9", Progress: float64(10), ChildIDs: []any{"a"}}
	first, err := NormalizeNode(raw)
	require.NoError(t, err)
	second, err := NormalizeNode(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
