package choice

import (
	"context"

	domain "planning/internal/domain/choice"
)

// Store reads and updates planning choices. The production implementation
// talks to the hosted data service; a sqlite implementation backs local
// development. Choices are never created through this interface; rows are
// owned by the backend and only their etat field is written here.
type Store interface {
	// ListByOwner returns the choices of one trigram+userType group,
	// ordered ascending by choice order.
	ListByOwner(ctx context.Context, trigram, userType string) ([]domain.PlanningChoice, error)
	// ListAll returns every choice, newest created first.
	ListAll(ctx context.Context) ([]domain.PlanningChoice, error)
	// UpdateEtat sets the workflow state of a single choice by id.
	UpdateEtat(ctx context.Context, id, etat string) error
}
