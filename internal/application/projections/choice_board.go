package projections

import (
	"context"

	domain "planning/internal/domain/choice"
)

// ChoiceReader is the store interface needed by the board projection.
type ChoiceReader interface {
	ListByOwner(ctx context.Context, trigram, userType string) ([]domain.PlanningChoice, error)
}

// GetChoiceBoardQuery carries query parameters.
type GetChoiceBoardQuery struct {
	Trigram  string
	UserType string
}

// RankedChoice is a choice with its 1-based rank within its guard-nature group.
type RankedChoice struct {
	domain.PlanningChoice
	Rank int
}

// GetChoiceBoardResult carries the query result: the same result set shaped
// three ways (flat board, per-nature summaries, per-nature step panels).
type GetChoiceBoardResult struct {
	Choices  []domain.PlanningChoice
	Normales []RankedChoice
	Bonnes   []RankedChoice
}

// GetChoiceBoardDeps holds dependencies for GetChoiceBoard.
type GetChoiceBoardDeps struct {
	ChoiceStore ChoiceReader
}

// QueryGetChoiceBoard retrieves one user's choices and groups them by guard
// nature, preserving the backend's ascending choice_order within each group.
// PRE: query.Trigram and query.UserType are non-empty
// POST: Returns choices plus ranked per-nature groups
// INVARIANT: Ranks are 1-based and contiguous within each group
func QueryGetChoiceBoard(ctx context.Context, query GetChoiceBoardQuery, deps GetChoiceBoardDeps) (GetChoiceBoardResult, error) {
	choices, err := deps.ChoiceStore.ListByOwner(ctx, query.Trigram, query.UserType)
	if err != nil {
		return GetChoiceBoardResult{}, err
	}

	result := GetChoiceBoardResult{Choices: choices}
	result.Normales, result.Bonnes = GroupByNature(choices)
	return result, nil
}

// GroupByNature splits choices into normale and bonne groups, assigning
// 1-based ranks in input order. Unknown natures count as normale.
func GroupByNature(choices []domain.PlanningChoice) (normales, bonnes []RankedChoice) {
	for _, c := range choices {
		if c.Nature() == domain.NatureBonne {
			bonnes = append(bonnes, RankedChoice{PlanningChoice: c, Rank: len(bonnes) + 1})
		} else {
			normales = append(normales, RankedChoice{PlanningChoice: c, Rank: len(normales) + 1})
		}
	}
	return normales, bonnes
}
