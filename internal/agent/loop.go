package agent

import (
	"context"
	"fmt"
)

const (
	// DefaultMaxIterations bounds how many assistant turns a single Run can
	// take before the loop gives up and returns ErrMaxIterations.
	DefaultMaxIterations = 25

	// DefaultMaxEmptyResponses bounds consecutive assistant turns that carry
	// neither Content nor ToolCalls before the loop gives up.
	DefaultMaxEmptyResponses = 3
)

// Option configures a Loop at construction time.
type Option func(*Loop)

// WithMaxIterations overrides DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(l *Loop) { l.maxIterations = n }
}

// WithMaxEmptyResponses overrides DefaultMaxEmptyResponses.
func WithMaxEmptyResponses(n int) Option {
	return func(l *Loop) { l.maxEmptyResponses = n }
}

// WithHooks installs the StreamingPromptHook implementation. Defaults to
// NoopHooks when not set.
func WithHooks(h Hooks) Option {
	return func(l *Loop) { l.hooks = h }
}

// WithLoopDetector installs a LoopDetector. Without one the loop runs
// unbounded repetition checks off.
func WithLoopDetector(d LoopDetector) Option {
	return func(l *Loop) { l.detector = d }
}

// WithPlanMode starts every session this Loop runs in plan mode: mutating
// tools are rejected until plan mode is lifted (spec.md §4.2 plan/act
// modes). The veto itself is enforced by the ToolExecutor against
// Session.PlanMode(), so it applies whether plan mode was set here or via
// Session.SetPlanMode directly.
func WithPlanMode(planMode bool) Option {
	return func(l *Loop) { l.planMode = planMode }
}

// Loop is the turn-bounded orchestration described in spec.md §4.9: it
// alternates calling the Provider for the next assistant message and,
// where that message carries ToolCalls, dispatching each one through the
// ToolExecutor and feeding the correlated ToolResults back in, until the
// model stops requesting tools, a ceiling is hit, the LoopDetector fires,
// or the session is cancelled.
type Loop struct {
	provider Provider
	executor ToolExecutor
	detector LoopDetector
	hooks    Hooks
	tools    []ToolSpec

	maxIterations     int
	maxEmptyResponses int
	planMode          bool
}

// NewLoop builds a Loop from its required collaborators plus Options.
func NewLoop(provider Provider, executor ToolExecutor, tools []ToolSpec, opts ...Option) *Loop {
	l := &Loop{
		provider:          provider,
		executor:          executor,
		tools:             tools,
		hooks:             NoopHooks{},
		maxIterations:     DefaultMaxIterations,
		maxEmptyResponses: DefaultMaxEmptyResponses,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetPlanMode toggles plan/act mode on an already-constructed Loop.
func (l *Loop) SetPlanMode(planMode bool) { l.planMode = planMode }

// PlanMode reports the current plan/act mode.
func (l *Loop) PlanMode() bool { return l.planMode }

// Run appends userInput as a user Message and drives the turn loop until
// the model produces a final assistant message with no further tool calls,
// or a terminal condition (ceiling, loop detection, cancellation) is hit.
// It returns the final assistant message together with a TaxonomyError
// wrapping any terminal condition — the caller decides whether a
// recoverable condition (ErrMaxIterations, ErrMaxEmptyResponses) should be
// reported to the user as-is or retried with a fresh Run.
func (l *Loop) Run(ctx context.Context, session *Session, userInput string) (Message, error) {
	if l.planMode {
		session.SetPlanMode(true)
	}
	if userInput != "" {
		session.AppendMessage(Message{Role: RoleUser, Content: userInput})
	}

	for {
		if session.Cancelled() {
			return Message{}, NewTaxonomyError(ErrCancelled, "cancelled", false, nil)
		}

		turn := session.IncrementTurn()
		if turn > l.maxIterations {
			return Message{}, NewTaxonomyError(ErrMaxIterations, "max_iterations",
				true, fmt.Errorf("exceeded %d turns", l.maxIterations))
		}

		if l.detector != nil {
			if isLoop, reason := l.detector.Check(session); isLoop {
				return Message{}, NewTaxonomyError(ErrLoopDetected, "loop_detected", false,
					fmt.Errorf("%s", reason))
			}
		}

		messages := session.Snapshot()
		l.hooks.OnCompletionCall(ctx, session, messages)

		assistantMsg, err := l.provider.Complete(ctx, messages, l.tools)
		if err != nil {
			return Message{}, classifyProviderError(err)
		}
		l.hooks.OnStreamCompletionResponseFinish(ctx, session, assistantMsg)

		empty := assistantMsg.Content == "" && len(assistantMsg.ToolCalls) == 0
		emptyStreak := session.NoteAssistantResponse(empty)
		if empty {
			if emptyStreak >= l.maxEmptyResponses {
				return Message{}, NewTaxonomyError(ErrMaxEmptyResponses, "max_empty_responses",
					true, fmt.Errorf("%d consecutive empty responses", emptyStreak))
			}
			session.AppendMessage(assistantMsg)
			continue
		}

		session.AppendMessage(assistantMsg)

		if len(assistantMsg.ToolCalls) == 0 {
			return assistantMsg, nil
		}

		results := make([]ToolResult, 0, len(assistantMsg.ToolCalls))
		for _, call := range assistantMsg.ToolCalls {
			if session.Cancelled() {
				return Message{}, NewTaxonomyError(ErrCancelled, "cancelled", false, nil)
			}
			l.hooks.OnToolCall(ctx, session, call)
			result := l.executor.Execute(ctx, session, call)
			result.ToolCallID = call.ID
			l.hooks.OnToolResult(ctx, session, result)
			results = append(results, result)
		}

		session.AppendMessage(Message{Role: RoleTool, Results: results})
	}
}

// classifyProviderError wraps a raw provider error in a TaxonomyError if it
// isn't one already; Provider implementations are expected to already
// return *TaxonomyError for transient/fatal distinctions, so this is a
// defensive fallback for anything that slips through unwrapped.
func classifyProviderError(err error) error {
	if _, ok := err.(*TaxonomyError); ok {
		return err
	}
	return NewTaxonomyError(ErrProviderFatal, "provider_error", false, err)
}
