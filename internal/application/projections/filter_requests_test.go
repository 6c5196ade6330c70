package projections

import (
	"testing"

	domain "planning/internal/domain/choice"
)

func sampleRequests() []domain.PlanningChoice {
	return []domain.PlanningChoice{
		{ID: "1", Trigram: "DUP", UserType: "medecin", Etat: domain.EtatPending, Day: "2026-02-03", ActivityType: "garde", ColumnLabel: "Garde jour", SlotTypeCode: "GJ"},
		{ID: "2", Trigram: "dup", UserType: "medecin", Etat: domain.EtatAccepted, Day: "2026-02-04", ActivityType: "garde", ColumnLabel: "Garde nuit", SlotTypeCode: "GN"},
		{ID: "3", Trigram: "MAR", UserType: "medecin", Etat: domain.EtatRejected, Day: "2026-02-03T08:00:00Z", ActivityType: "astreinte", ColumnLabel: "Astreinte", SlotTypeCode: "AST"},
		{ID: "4", Trigram: "LEF", UserType: "remplacant", Etat: domain.EtatPending, Day: "2026-02-05", ActivityType: "garde", ColumnLabel: "Garde jour", SlotTypeCode: "GJ"},
	}
}

func ids(requests []domain.PlanningChoice) []string {
	out := make([]string, 0, len(requests))
	for _, r := range requests {
		out = append(out, r.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestFilterRequests_StatusFacet verifies facet subsetting and that clearing
// the facet restores the full set without refetching.
func TestFilterRequests_StatusFacet(t *testing.T) {
	all := sampleRequests()

	pending := FilterRequests(all, RequestFilters{Status: domain.EtatPending})
	if !equalIDs(ids(pending), []string{"1", "4"}) {
		t.Errorf("pending facet = %v, want [1 4]", ids(pending))
	}

	accepted := FilterRequests(all, RequestFilters{Status: domain.EtatAccepted})
	if !equalIDs(ids(accepted), []string{"2"}) {
		t.Errorf("accepted facet = %v, want [2]", ids(accepted))
	}

	restored := FilterRequests(all, RequestFilters{})
	if !equalIDs(ids(restored), []string{"1", "2", "3", "4"}) {
		t.Errorf("cleared facet = %v, want the full set", ids(restored))
	}
}

// TestFilterRequests_FacetWinsOverForm verifies the facet takes precedence
// over the form's status field.
func TestFilterRequests_FacetWinsOverForm(t *testing.T) {
	all := sampleRequests()

	got := FilterRequests(all, RequestFilters{Status: domain.EtatRejected, FormStatus: domain.EtatPending})
	if !equalIDs(ids(got), []string{"3"}) {
		t.Errorf("facet+form = %v, want [3]", ids(got))
	}

	got = FilterRequests(all, RequestFilters{FormStatus: domain.EtatAccepted})
	if !equalIDs(ids(got), []string{"2"}) {
		t.Errorf("form only = %v, want [2]", ids(got))
	}
}

// TestFilterRequests_DoctorSubstring verifies the case-insensitive substring
// match on the requester trigram.
func TestFilterRequests_DoctorSubstring(t *testing.T) {
	all := sampleRequests()

	got := FilterRequests(all, RequestFilters{Doctor: "du"})
	if !equalIDs(ids(got), []string{"1", "2"}) {
		t.Errorf("doctor 'du' = %v, want both DUP and dup rows", ids(got))
	}

	got = FilterRequests(all, RequestFilters{Doctor: "  MAR "})
	if !equalIDs(ids(got), []string{"3"}) {
		t.Errorf("doctor 'MAR' = %v, want [3]", ids(got))
	}
}

// TestFilterRequests_ColumnSubstring verifies the column filter matches the
// label or the slot code, case-insensitively.
func TestFilterRequests_ColumnSubstring(t *testing.T) {
	all := sampleRequests()

	got := FilterRequests(all, RequestFilters{Column: "nuit"})
	if !equalIDs(ids(got), []string{"2"}) {
		t.Errorf("column 'nuit' = %v, want [2]", ids(got))
	}

	got = FilterRequests(all, RequestFilters{Column: "gj"})
	if !equalIDs(ids(got), []string{"1", "4"}) {
		t.Errorf("column 'gj' = %v, want [1 4]", ids(got))
	}
}

// TestFilterRequests_Date verifies the date filter compares calendar dates,
// ignoring any time component of the stored day.
func TestFilterRequests_Date(t *testing.T) {
	all := sampleRequests()

	got := FilterRequests(all, RequestFilters{Date: "2026-02-03"})
	if !equalIDs(ids(got), []string{"1", "3"}) {
		t.Errorf("date filter = %v, want [1 3]", ids(got))
	}
}

// TestFilterRequests_Combined verifies filters AND together.
func TestFilterRequests_Combined(t *testing.T) {
	all := sampleRequests()

	got := FilterRequests(all, RequestFilters{
		UserType:     "medecin",
		Status:       domain.EtatPending,
		ActivityType: "garde",
		Doctor:       "dup",
	})
	if !equalIDs(ids(got), []string{"1"}) {
		t.Errorf("combined filters = %v, want [1]", ids(got))
	}

	got = FilterRequests(all, RequestFilters{UserType: "remplacant", Status: domain.EtatAccepted})
	if len(got) != 0 {
		t.Errorf("contradictory filters = %v, want empty", ids(got))
	}
}

// TestUserTypes verifies distinct user types in first-seen order.
func TestUserTypes(t *testing.T) {
	got := UserTypes(sampleRequests())
	want := []string{"medecin", "remplacant"}
	if !equalIDs(got, want) {
		t.Errorf("UserTypes() = %v, want %v", got, want)
	}

	if got := UserTypes(nil); len(got) != 0 {
		t.Errorf("UserTypes(nil) = %v, want empty", got)
	}
}

// TestStatusTabs verifies the fixed facet set order.
func TestStatusTabs(t *testing.T) {
	want := []string{"", domain.EtatPending, domain.EtatAccepted, domain.EtatRejected}
	if len(StatusTabs) != len(want) {
		t.Fatalf("StatusTabs len=%d want %d", len(StatusTabs), len(want))
	}
	for i, tab := range StatusTabs {
		if tab.Value != want[i] {
			t.Errorf("StatusTabs[%d].Value=%q want %q", i, tab.Value, want[i])
		}
	}
}
