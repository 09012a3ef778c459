package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okrpilot/internal/domain"
	"okrpilot/internal/llm"
)

type stubClient struct {
	messages  []llm.Message
	fragments []string
}

func (c *stubClient) StreamChat(ctx context.Context, messages []llm.Message) (<-chan llm.Chunk, error) {
	c.messages = messages
	out := make(chan llm.Chunk, len(c.fragments))
	for _, f := range c.fragments {
		out <- llm.Chunk{Text: f}
	}
	close(out)
	return out, nil
}

func TestRun_BuildsSystemPromptWithMap(t *testing.T) {
	client := &stubClient{fragments: []string{"ответ"}}
	assembler := NewAssembler(client)

	m := &domain.GoalsMap{
		MapName: "Карта Арио",
		Nodes:   []domain.GoalNode{{ID: "1", Code: "Ц-1", Name: "Цель"}},
	}
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "первый вопрос"},
		{Role: llm.RoleAssistant, Content: "первый ответ"},
		{Role: llm.RoleUser, Content: "второй вопрос"},
	}

	stream, err := assembler.Run(context.Background(), m, history, "Текст DOCX")
	require.NoError(t, err)

	got, err := llm.Collect(stream)
	require.NoError(t, err)
	assert.Equal(t, "ответ", got)

	require.Len(t, client.messages, 4)
	system := client.messages[0]
	assert.Equal(t, llm.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "Карта Арио")
	assert.Contains(t, system.Content, "### Карта целей:")
	assert.Contains(t, system.Content, "Текст DOCX")

	// History is forwarded verbatim after the system message.
	assert.Equal(t, history, client.messages[1:])
}

func TestRun_OmitsDocxSectionWhenEmpty(t *testing.T) {
	client := &stubClient{}
	assembler := NewAssembler(client)

	m := &domain.GoalsMap{Nodes: []domain.GoalNode{{ID: "1"}}}
	_, err := assembler.Run(context.Background(), m, nil, "")
	require.NoError(t, err)
	assert.NotContains(t, client.messages[0].Content, "DOCX")
}

func TestRunWithContext_Sections(t *testing.T) {
	tests := []struct {
		name          string
		mapContext    string
		targetContext string
		wantContains  []string
		wantAbsent    []string
	}{
		{
			name:         "map only",
			mapContext:   "КОНТЕКСТ КАРТЫ",
			wantContains: []string{"### Карта целей:", "КОНТЕКСТ КАРТЫ"},
			wantAbsent:   []string{"### Выбранная цель:"},
		},
		{
			name:          "target only",
			targetContext: "КОНТЕКСТ ЦЕЛИ",
			wantContains:  []string{"### Выбранная цель:", "КОНТЕКСТ ЦЕЛИ"},
			wantAbsent:    []string{"### Карта целей:"},
		},
		{
			name:          "both",
			mapContext:    "КОНТЕКСТ КАРТЫ",
			targetContext: "КОНТЕКСТ ЦЕЛИ",
			wantContains:  []string{"### Карта целей:", "### Выбранная цель:"},
		},
		{
			name:         "neither",
			wantContains: []string{"Данные не выбраны"},
			wantAbsent:   []string{"### Карта целей:", "### Выбранная цель:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{}
			assembler := NewAssembler(client)

			_, err := assembler.RunWithContext(context.Background(), tt.mapContext, tt.targetContext, nil)
			require.NoError(t, err)

			system := client.messages[0].Content
			for _, want := range tt.wantContains {
				assert.Contains(t, system, want)
			}
			for _, absent := range tt.wantAbsent {
				assert.NotContains(t, system, absent)
			}
		})
	}
}
