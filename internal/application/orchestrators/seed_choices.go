package orchestrators

import (
	"context"
	"log/slog"
	"time"

	domain "planning/internal/domain/choice"
)

// ChoiceSeedStore is the store interface needed by the synthetic seeder.
// Only the local development store implements Save; the hosted backend owns
// row creation in production.
type ChoiceSeedStore interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, c domain.PlanningChoice) error
}

// SeedChoicesDeps holds dependencies for SeedChoices.
type SeedChoicesDeps struct {
	ChoiceStore ChoiceSeedStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteSeedChoices populates the local store with synthetic planning
// choices so every screen renders in development. Idempotent: a non-empty
// store is left untouched.
// PRE: deps are fully wired
// POST: The store contains demo choices for a medecin, a remplacant and data
// visible to the moderation console
func ExecuteSeedChoices(ctx context.Context, deps SeedChoicesDeps) error {
	n, err := deps.ChoiceStore.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	now := deps.Now()
	monday := now.AddDate(0, 0, int(time.Monday-now.Weekday()+7)%7)

	type seed struct {
		offsetDays  int
		columnNum   int
		columnLabel string
		slotCode    string
		activity    string
		nature      string
		trigram     string
		userType    string
		order       int
		etat        string
	}
	seeds := []seed{
		{0, 1, "Garde jour", "GJ", "garde", domain.NatureNormale, "DUP", "medecin", 0, domain.EtatPending},
		{1, 2, "Garde nuit", "GN", "garde", domain.NatureNormale, "DUP", "medecin", 1, domain.EtatAccepted},
		{2, 3, "Astreinte", "AST", "astreinte", domain.NatureBonne, "DUP", "medecin", 0, domain.EtatPending},
		{3, 1, "Garde jour", "GJ", "garde", domain.NatureNormale, "MAR", "medecin", 0, domain.EtatRejected},
		{4, 2, "Garde nuit", "GN", "garde", domain.NatureBonne, "MAR", "medecin", 0, domain.EtatPending},
		{5, 1, "Garde jour", "GJ", "garde", domain.NatureNormale, "LEF", "remplacant", 0, domain.EtatPending},
		{6, 3, "Astreinte", "AST", "astreinte", domain.NatureBonne, "LEF", "remplacant", 0, domain.EtatAccepted},
	}

	for i, s := range seeds {
		day := monday.AddDate(0, 0, s.offsetDays)
		c := domain.PlanningChoice{
			ID:               deps.GenerateID(),
			Day:              day.Format("2006-01-02"),
			ColumnNumber:     s.columnNum,
			ColumnLabel:      s.columnLabel,
			SlotTypeCode:     s.slotCode,
			PlanningDayLabel: day.Format("Monday"),
			ActivityType:     s.activity,
			GuardNature:      s.nature,
			Trigram:          s.trigram,
			UserType:         s.userType,
			ChoiceOrder:      s.order,
			Etat:             s.etat,
			CreatedAt:        now.Add(-time.Duration(i) * time.Hour),
		}
		if err := deps.ChoiceStore.Save(ctx, c); err != nil {
			return err
		}
	}

	slog.Info("synthetic_choices_seeded", "count", len(seeds))
	return nil
}
