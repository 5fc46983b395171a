package editengine

import (
	"context"
	"fmt"
)

// ReplaceRequest is the replace-in-file tool's input (spec.md §4.6).
type ReplaceRequest struct {
	Path              string
	OldStr            string
	NewStr            string
	Instruction       string
	StartLine         int
	EndLine           int
	Provider          string // used to pick the fixer's fast model
}

// Outcome is a successful edit resolution: the tier that matched and the
// full new file content to hand to diffproto.NewPendingDiff. It carries
// no byte span of the matched text.
type Outcome struct {
	Tier       MatchTier
	NewContent string
}

// Engine resolves a ReplaceRequest against file content, trying the
// three-tier match ladder first and falling back to the edit fixer.
type Engine struct {
	fixer *Fixer
}

// NewEngine wires an Engine to a Fixer (nil disables the fallback tier,
// turning a ladder exhaustion straight into an EditFailure).
func NewEngine(fixer *Fixer) *Engine {
	return &Engine{fixer: fixer}
}

// Resolve runs req.OldStr through the match ladder against content and
// returns the new file content to preview. If every tier fails, the
// edit fixer (if configured) is tried once before giving up.
func (e *Engine) Resolve(ctx context.Context, content string, req ReplaceRequest) (Outcome, error) {
	match, err := FindMatch(content, req.OldStr, req.StartLine, req.EndLine)
	if err == nil {
		return Outcome{Tier: match.Tier, NewContent: ApplyMatch(content, match, req.NewStr)}, nil
	}

	if _, ambiguous := err.(*AmbiguousMatchError); ambiguous {
		return Outcome{}, err
	}

	if e.fixer == nil {
		return Outcome{}, fmt.Errorf("editengine: %w: no match for old_str and no fixer configured", err)
	}

	result, fixErr := e.fixer.Fix(ctx, req.Provider, content, req.OldStr, req.NewStr)
	if fixErr != nil {
		return Outcome{}, fmt.Errorf("editengine: match ladder exhausted and fixer failed: %w", fixErr)
	}
	if result.NoChangesRequired {
		return Outcome{Tier: TierFixer, NewContent: content}, nil
	}

	fixedMatch, err := matchExact(content, result.Search)
	if err != nil {
		return Outcome{}, fmt.Errorf("editengine: fixer's search text did not resolve to a unique match: %w", err)
	}
	return Outcome{Tier: TierFixer, NewContent: ApplyMatch(content, fixedMatch, result.Replace)}, nil
}
