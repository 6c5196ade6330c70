package projections

import (
	"context"
	"strings"

	domain "planning/internal/domain/choice"
)

// RequestReader is the store interface needed by the moderation projection.
type RequestReader interface {
	ListAll(ctx context.Context) ([]domain.PlanningChoice, error)
}

// StatusTab is one entry of the fixed status facet row.
type StatusTab struct {
	Value string
	Label string
}

// StatusTabs is the fixed ordered status facet set of the moderation console.
var StatusTabs = []StatusTab{
	{Value: "", Label: "Tous"},
	{Value: domain.EtatPending, Label: "En attente"},
	{Value: domain.EtatAccepted, Label: "Acceptées"},
	{Value: domain.EtatRejected, Label: "Refusées"},
}

// RequestFilters holds every filter dimension of the moderation console.
// Empty fields match everything.
type RequestFilters struct {
	UserType     string // facet: exact match on user_type
	Status       string // facet: takes precedence over FormStatus
	FormStatus   string // form field: exact match on etat
	Date         string // ISO calendar date compared against the day column
	ActivityType string // exact match on activity_type
	Doctor       string // case-insensitive substring of trigram
	Column       string // case-insensitive substring of column_label or slot_type_code
}

// EffectiveStatus resolves the status to match: the facet wins over the form.
func (f RequestFilters) EffectiveStatus() string {
	if f.Status != "" {
		return f.Status
	}
	return f.FormStatus
}

// GetRequestsDeps holds dependencies for GetRequests.
type GetRequestsDeps struct {
	ChoiceStore RequestReader
}

// QueryGetRequests retrieves the full unfiltered request set, newest first.
// PRE: none
// POST: Returns all choices across users
func QueryGetRequests(ctx context.Context, deps GetRequestsDeps) ([]domain.PlanningChoice, error) {
	return deps.ChoiceStore.ListAll(ctx)
}

// FilterRequests returns the subset of requests passing every active filter.
// Pure: no rendering surface or network involved, so facet changes re-filter
// the already-loaded set without refetching.
// PRE: requests is the loaded result set
// POST: A request passes iff ALL active filter dimensions match
func FilterRequests(requests []domain.PlanningChoice, f RequestFilters) []domain.PlanningChoice {
	doctor := strings.ToLower(strings.TrimSpace(f.Doctor))
	column := strings.ToLower(strings.TrimSpace(f.Column))
	status := f.EffectiveStatus()

	var filtered []domain.PlanningChoice
	for _, request := range requests {
		if f.UserType != "" && request.UserType != f.UserType {
			continue
		}
		if status != "" && request.Etat != status {
			continue
		}
		if f.Date != "" && domain.FormatDayISO(request.Day) != f.Date {
			continue
		}
		if f.ActivityType != "" && request.ActivityType != f.ActivityType {
			continue
		}
		if doctor != "" && !strings.Contains(strings.ToLower(request.Trigram), doctor) {
			continue
		}
		if column != "" {
			label := strings.ToLower(request.ColumnLabel)
			code := strings.ToLower(request.SlotTypeCode)
			if !strings.Contains(label, column) && !strings.Contains(code, column) {
				continue
			}
		}
		filtered = append(filtered, request)
	}
	return filtered
}

// UserTypes returns the distinct user types present in the loaded set, in
// first-seen order. Drives the user-type facet tabs.
func UserTypes(requests []domain.PlanningChoice) []string {
	seen := make(map[string]bool)
	var types []string
	for _, request := range requests {
		if request.UserType == "" || seen[request.UserType] {
			continue
		}
		seen[request.UserType] = true
		types = append(types, request.UserType)
	}
	return types
}
