package agent

import "errors"

// Error taxonomy (spec.md §7). Recovery policy: anything recoverable
// becomes a ToolResult so the model can retry; only ErrProviderFatal,
// ErrLoopDetected, and ErrCancelled terminate the session.
var (
	// ErrUserError covers missing args, plan-mode violations, unknown tools.
	ErrUserError = errors.New("user error")

	// ErrProviderTransient covers rate limits / 5xx; retried with backoff.
	ErrProviderTransient = errors.New("provider transient error")

	// ErrProviderFatal covers 4xx (non-429), auth failures, schema mismatch.
	ErrProviderFatal = errors.New("provider fatal error")

	// ErrToolFailure covers any non-user failure inside a tool handler.
	ErrToolFailure = errors.New("tool failure")

	// ErrEditFailure signals match-tier exhaustion in the edit engine.
	ErrEditFailure = errors.New("edit failure")

	// ErrLoopDetected is raised by the loop detector.
	ErrLoopDetected = errors.New("loop detected")

	// ErrCancelled signals a clean stop from session cancellation.
	ErrCancelled = errors.New("cancelled")

	// ErrAwaitingClarification is a control-flow sentinel, not a real error:
	// it tells the loop to pause and surface a clarifying question.
	ErrAwaitingClarification = errors.New("awaiting clarification")

	// ErrMaxIterations signals the turn ceiling was exceeded.
	ErrMaxIterations = errors.New("max iterations exceeded")

	// ErrMaxEmptyResponses signals too many consecutive empty assistant turns.
	ErrMaxEmptyResponses = errors.New("max empty responses exceeded")

	// ErrPlanModeViolation is returned when a mutating tool is invoked in plan mode.
	ErrPlanModeViolation = errors.New("cannot modify files in plan mode")

	// ErrUnknownTool is returned when a tool name has no registry entry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrSessionNotFound is returned when a session id has no matching record.
	ErrSessionNotFound = errors.New("session not found")
)

// TaxonomyError wraps an underlying error with a classification, the code
// surfaced in AgentError.Code, and whether the session can continue.
type TaxonomyError struct {
	Class       error
	Code        string
	Recoverable bool
	Err         error
}

func (e *TaxonomyError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Class.Error()
}

func (e *TaxonomyError) Unwrap() error { return e.Class }

// NewTaxonomyError constructs a classified error.
func NewTaxonomyError(class error, code string, recoverable bool, cause error) *TaxonomyError {
	return &TaxonomyError{Class: class, Code: code, Recoverable: recoverable, Err: cause}
}
