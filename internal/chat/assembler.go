// Package chat assembles the free-form conversation prompt: a fixed
// behavioral preamble, whatever map/target context is loaded, and the
// session history in submitted order.
package chat

import (
	"context"
	"strings"

	"okrpilot/internal/domain"
	"okrpilot/internal/goalmap"
	"okrpilot/internal/llm"
)

const chatSystemPrompt = `Ты — ИИ-помощник по OKR-методологии для системы Directum Targets.
Ты помогаешь пользователям анализировать карту стратегических целей, формулировать OKR, выявлять риски и конфликты.

Правила работы:
- Отвечай только на русском языке
- Используй загруженные данные (карта целей и описание цели) как основу для ответов
- Будь конкретным, аналитичным и практичным
- Если вопрос не связан с загруженными данными — всё равно отвечай, но укажи на это
- Форматируй ответы с заголовками и списками для лучшей читаемости`

// noContextNotice is substituted when neither context block is loaded,
// so the model does not invent one.
const noContextNotice = `## Загруженные данные для анализа:
Данные не выбраны. Карта целей и цель не загружены — сообщи об этом пользователю, если вопрос требует их.`

// Assembler builds chat prompts and forwards them to the transport.
type Assembler struct {
	client llm.Client
}

// NewAssembler creates an Assembler on top of a streaming transport.
func NewAssembler(client llm.Client) *Assembler {
	return &Assembler{client: client}
}

// Run starts a chat completion on the legacy protocol: the whole parsed
// map (rendered through the hierarchical formatter) plus optional
// supplementary document text.
func (a *Assembler) Run(ctx context.Context, m *domain.GoalsMap, history []llm.Message, docxText string) (<-chan llm.Chunk, error) {
	parts := []string{
		"## Загруженные данные для анализа:",
		"",
		"### Карта целей:",
		goalmap.FormatMapForLLM(m, ""),
	}
	if docxText != "" {
		parts = append(parts, "", "### Детальное описание цели (из DOCX):", docxText)
	}
	return a.stream(ctx, strings.Join(parts, "\n"), history)
}

// RunWithContext starts a chat completion on the current protocol with
// pre-rendered context strings; either may be empty. With no context at
// all the system message carries an explicit notice instead.
func (a *Assembler) RunWithContext(ctx context.Context, mapContext, targetContext string, history []llm.Message) (<-chan llm.Chunk, error) {
	hasMap := strings.TrimSpace(mapContext) != ""
	hasTarget := strings.TrimSpace(targetContext) != ""

	var block string
	switch {
	case !hasMap && !hasTarget:
		block = noContextNotice
	default:
		parts := []string{"## Загруженные данные для анализа:"}
		if hasMap {
			parts = append(parts, "", "### Карта целей:", mapContext)
		}
		if hasTarget {
			parts = append(parts, "", "### Выбранная цель:", targetContext)
		}
		block = strings.Join(parts, "\n")
	}
	return a.stream(ctx, block, history)
}

func (a *Assembler) stream(ctx context.Context, contextBlock string, history []llm.Message) (<-chan llm.Chunk, error) {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: chatSystemPrompt + "\n\n" + contextBlock,
	})
	messages = append(messages, history...)
	return a.client.StreamChat(ctx, messages)
}
