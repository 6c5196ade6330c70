package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domain "planning/internal/domain/choice"
)

type mockSeedStore struct {
	count    int
	countErr error
	saved    []domain.PlanningChoice
}

// Count returns the seeded row count.
// PRE: none
// POST: Returns the seeded count or error
func (m *mockSeedStore) Count(_ context.Context) (int, error) {
	return m.count, m.countErr
}

// Save records the choice.
// PRE: c is populated
// POST: Choice is appended to the saved slice
func (m *mockSeedStore) Save(_ context.Context, c domain.PlanningChoice) error {
	m.saved = append(m.saved, c)
	return nil
}

func seedDeps(store *mockSeedStore) SeedChoicesDeps {
	n := 0
	return SeedChoicesDeps{
		ChoiceStore: store,
		GenerateID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		Now: func() time.Time { return time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC) },
	}
}

// TestExecuteSeedChoices_FreshStore tests seeding into an empty store.
func TestExecuteSeedChoices_FreshStore(t *testing.T) {
	store := &mockSeedStore{}
	if err := ExecuteSeedChoices(context.Background(), seedDeps(store)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.saved) == 0 {
		t.Fatal("no choices seeded into empty store")
	}

	seen := map[string]bool{}
	natures := map[string]bool{}
	etats := map[string]bool{}
	for _, c := range store.saved {
		if err := c.Validate(); err != nil {
			t.Errorf("seeded choice %q invalid: %v", c.ID, err)
		}
		if seen[c.ID] {
			t.Errorf("duplicate seeded id %q", c.ID)
		}
		seen[c.ID] = true
		natures[c.Nature()] = true
		etats[c.Status()] = true
	}

	// The seed set must exercise both natures and all three workflow states
	// so every screen has something to show.
	if !natures[domain.NatureNormale] || !natures[domain.NatureBonne] {
		t.Errorf("seeded natures = %v, want both", natures)
	}
	for _, etat := range domain.ValidEtats {
		if !etats[etat] {
			t.Errorf("no seeded choice with etat %q", etat)
		}
	}
}

// TestExecuteSeedChoices_Idempotent tests that a non-empty store is untouched.
func TestExecuteSeedChoices_Idempotent(t *testing.T) {
	store := &mockSeedStore{count: 7}
	if err := ExecuteSeedChoices(context.Background(), seedDeps(store)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.saved) != 0 {
		t.Errorf("seeded %d choices into a non-empty store", len(store.saved))
	}
}

// TestExecuteSeedChoices_CountError tests count failures propagate.
func TestExecuteSeedChoices_CountError(t *testing.T) {
	boom := errors.New("count failed")
	store := &mockSeedStore{countErr: boom}
	if err := ExecuteSeedChoices(context.Background(), seedDeps(store)); !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}
