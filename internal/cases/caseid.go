// Package cases dispatches the fixed set of OKR analysis prompts. Each
// case binds a prompt template to a context precondition: it needs
// either one selected goal or the whole map.
package cases

import (
	"errors"
	"fmt"
)

// CaseID identifies one of the seven analysis cases. The set is closed:
// dispatch switches over these constants exhaustively, so adding or
// removing a case is a compile-visible change.
type CaseID int

const (
	// CaseSmartCheck critiques a goal wording against SMART criteria.
	CaseSmartCheck CaseID = iota + 1
	// CaseKeyResults generates candidate key-result sets for a goal.
	CaseKeyResults
	// CaseQuarterlyDecomposition splits a yearly goal into quarters.
	CaseQuarterlyDecomposition
	// CaseManagementExpectations verifies a goal against management
	// expectations. Retired from the current UI flow, still
	// dispatchable on both protocols.
	CaseManagementExpectations
	// CaseMapConflicts looks for conflicts and blind spots across the
	// whole map.
	CaseMapConflicts
	// CaseRiskAnalysis assesses risks of missing a goal.
	CaseRiskAnalysis
	// CaseExpressReport ranks goals by lag for a management report.
	CaseExpressReport
)

// Valid reports whether id belongs to the supported set.
func (id CaseID) Valid() bool {
	return id >= CaseSmartCheck && id <= CaseExpressReport
}

// RequiresGoal reports whether the case needs one selected goal.
func (id CaseID) RequiresGoal() bool {
	switch id {
	case CaseSmartCheck, CaseKeyResults, CaseQuarterlyDecomposition,
		CaseManagementExpectations, CaseRiskAnalysis:
		return true
	}
	return false
}

// RequiresMap reports whether the case needs the whole-map context.
func (id CaseID) RequiresMap() bool {
	switch id {
	case CaseMapConflicts, CaseExpressReport:
		return true
	}
	return false
}

// Name returns a stable slug for logging.
func (id CaseID) Name() string {
	switch id {
	case CaseSmartCheck:
		return "smart_check"
	case CaseKeyResults:
		return "key_results"
	case CaseQuarterlyDecomposition:
		return "quarterly_decomposition"
	case CaseManagementExpectations:
		return "management_expectations"
	case CaseMapConflicts:
		return "map_conflicts"
	case CaseRiskAnalysis:
		return "risk_analysis"
	case CaseExpressReport:
		return "express_report"
	}
	return fmt.Sprintf("case_%d", int(id))
}

// ErrCaseNotFound indicates a case id outside the supported set.
var ErrCaseNotFound = errors.New("case not found: supported cases are 1-7")

// PreconditionError indicates a case was invoked without the context it
// requires. The reason distinguishes "nothing selected" from "selected
// but unresolvable".
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

func errNoGoalSelected() error {
	return &PreconditionError{Reason: "a goal must be selected for this case"}
}

func errGoalNotFound(goalID string) error {
	return &PreconditionError{Reason: fmt.Sprintf("goal %q not found in the supplied map", goalID)}
}

func errNoMapContext() error {
	return &PreconditionError{Reason: "a goals map is required for this case"}
}
