package cases

import (
	"context"
	"fmt"
	"strings"

	"okrpilot/internal/domain"
	"okrpilot/internal/goalmap"
	"okrpilot/internal/llm"
)

// Engine resolves a case id to its prompt, checks the case's context
// precondition and hands the assembled message list to the transport.
// The returned stream is never consumed here: evaluation starts when
// the caller reads it.
type Engine struct {
	client llm.Client
}

// NewEngine creates an Engine on top of a streaming transport.
func NewEngine(client llm.Client) *Engine {
	return &Engine{client: client}
}

// Run executes a case on the legacy protocol: a full parsed map, an
// optional selected goal id and optional supplementary document text.
// Goal-required cases fail with a PreconditionError when no goal id is
// supplied, and with a distinct one when the id does not resolve.
func (e *Engine) Run(ctx context.Context, id CaseID, m *domain.GoalsMap, selectedGoalID, docxText string) (<-chan llm.Chunk, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w (got %d)", ErrCaseNotFound, int(id))
	}

	var goal *domain.GoalNode
	if id.RequiresGoal() {
		if selectedGoalID == "" {
			return nil, errNoGoalSelected()
		}
		goal = m.GoalByID(selectedGoalID)
		if goal == nil {
			return nil, errGoalNotFound(selectedGoalID)
		}
	}

	var user string
	switch id {
	case CaseSmartCheck:
		user = joinBlocks(
			case1Intro,
			goalContext(goal, docxText),
			mapContextHeader+"\n"+goalmap.FormatMapForLLM(m, selectedGoalID),
			case1Task,
		)
	case CaseKeyResults:
		user = joinBlocks(
			case2Intro,
			goalContext(goal, docxText),
			fmt.Sprintf(case2SituationFmt, goal.KeyResults),
			case2Task,
		)
	case CaseQuarterlyDecomposition:
		user = joinBlocks(
			case3Intro,
			goalContext(goal, docxText),
			mapDependencyHeader+"\n"+goalmap.FormatMapForLLM(m, selectedGoalID),
			fmt.Sprintf(case3TaskFmt, goal.Progress),
		)
	case CaseManagementExpectations:
		intro := case4Intro
		if docxText == "" {
			intro += case4NoDocNote
		}
		user = joinBlocks(intro, goalContext(goal, docxText), case4Task)
	case CaseMapConflicts:
		user = joinBlocks(
			case5Intro,
			mapSectionHeader+"\n"+goalmap.FormatMapForLLM(m, ""),
			case5Task,
		)
	case CaseRiskAnalysis:
		user = joinBlocks(
			case6Intro,
			goalContext(goal, docxText),
			mapContextHeader+"\n"+goalmap.FormatMapForLLM(m, selectedGoalID),
			fmt.Sprintf(case6TaskFmt, goal.Progress),
		)
	case CaseExpressReport:
		user = joinBlocks(
			case7Intro,
			mapSectionHeader+"\n"+goalmap.FormatMapForLLM(m, ""),
			case7Task,
		)
	}

	return e.stream(ctx, user)
}

// RunWithContext executes a case on the current protocol: the caller
// supplies pre-rendered map and target context strings, and the
// precondition check is string presence.
func (e *Engine) RunWithContext(ctx context.Context, id CaseID, mapContext, targetContext string) (<-chan llm.Chunk, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w (got %d)", ErrCaseNotFound, int(id))
	}
	if id.RequiresGoal() && strings.TrimSpace(targetContext) == "" {
		return nil, errNoGoalSelected()
	}
	if id.RequiresMap() && strings.TrimSpace(mapContext) == "" {
		return nil, errNoMapContext()
	}

	var user string
	switch id {
	case CaseSmartCheck:
		user = joinBlocks(case1Intro, targetContext, case1Task)
	case CaseKeyResults:
		user = joinBlocks(case2Intro, targetContext, case2Task)
	case CaseQuarterlyDecomposition:
		user = joinBlocks(case3Intro, targetContext, case3TaskPlain)
	case CaseManagementExpectations:
		user = joinBlocks(case4Intro, targetContext, case4Task)
	case CaseMapConflicts:
		user = joinBlocks(case5Intro, mapSectionHeader+"\n"+mapContext, case5Task)
	case CaseRiskAnalysis:
		user = joinBlocks(case6Intro, targetContext, case6TaskPlain)
	case CaseExpressReport:
		user = joinBlocks(case7Intro, mapSectionHeader+"\n"+mapContext, case7Task)
	}

	return e.stream(ctx, user)
}

func (e *Engine) stream(ctx context.Context, user string) (<-chan llm.Chunk, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemBase},
		{Role: llm.RoleUser, Content: user},
	}
	return e.client.StreamChat(ctx, messages)
}

func joinBlocks(blocks ...string) string {
	return strings.Join(blocks, "\n\n")
}
