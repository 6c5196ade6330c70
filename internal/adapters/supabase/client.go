package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	domain "planning/internal/domain/choice"
)

const (
	restPath     = "/rest/v1/planning_choices"
	selectFields = "id,day,column_number,column_label,slot_type_code,planning_day_label,activity_type,guard_nature,trigram,user_type,choice_order,etat,created_at"
)

// Store talks to a hosted Supabase (PostgREST) endpoint. It implements the
// choice store contract used by the pages: filtered, sorted reads plus
// single-row etat updates. Any non-2xx response is treated as failure.
type Store struct {
	client  *resty.Client
	baseURL string
}

// New creates a Store for the given endpoint and access key.
// PRE: baseURL and key are non-empty (validated by the connection manager)
// POST: Returns a ready-to-use store; no network call is made yet
func New(baseURL, key string) *Store {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("apikey", key).
		SetHeader("Authorization", "Bearer "+key).
		SetHeader("Accept", "application/json")
	return &Store{client: client, baseURL: baseURL}
}

// restChoice is the wire shape of a planning_choices row.
type restChoice struct {
	ID               flexID `json:"id"`
	Day              string `json:"day"`
	ColumnNumber     int    `json:"column_number"`
	ColumnLabel      string `json:"column_label"`
	SlotTypeCode     string `json:"slot_type_code"`
	PlanningDayLabel string `json:"planning_day_label"`
	ActivityType     string `json:"activity_type"`
	GuardNature      string `json:"guard_nature"`
	Trigram          string `json:"trigram"`
	UserType         string `json:"user_type"`
	ChoiceOrder      int    `json:"choice_order"`
	Etat             string `json:"etat"`
	CreatedAt        string `json:"created_at"`
}

// flexID accepts both numeric and string row ids from the backend.
type flexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// restError is the PostgREST error body.
type restError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ListByOwner retrieves one user+role group's choices from the backend.
// PRE: trigram and userType are non-empty
// POST: Returns choices ordered ascending by choice_order
func (s *Store) ListByOwner(ctx context.Context, trigram, userType string) ([]domain.PlanningChoice, error) {
	return s.list(ctx, map[string]string{
		"select":    selectFields,
		"trigram":   "eq." + trigram,
		"user_type": "eq." + userType,
		"order":     "choice_order.asc",
	})
}

// ListAll retrieves every choice from the backend.
// PRE: none
// POST: Returns choices ordered descending by created_at
func (s *Store) ListAll(ctx context.Context) ([]domain.PlanningChoice, error) {
	return s.list(ctx, map[string]string{
		"select": selectFields,
		"order":  "created_at.desc",
	})
}

// UpdateEtat patches the etat field of a single row by id.
// PRE: id is non-empty, etat is a valid workflow state
// POST: The matching row is updated on the backend
func (s *Store) UpdateEtat(ctx context.Context, id, etat string) error {
	if !domain.IsValidEtat(etat) {
		return domain.ErrInvalidEtat
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"etat": etat}).
		Patch(restPath)
	if err != nil {
		return fmt.Errorf("supabase update failed: %w", err)
	}
	if resp.IsError() {
		return restErrorFrom(resp)
	}
	return nil
}

func (s *Store) list(ctx context.Context, params map[string]string) ([]domain.PlanningChoice, error) {
	var rows []restChoice
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&rows).
		Get(restPath)
	if err != nil {
		return nil, fmt.Errorf("supabase query failed: %w", err)
	}
	if resp.IsError() {
		return nil, restErrorFrom(resp)
	}

	choices := make([]domain.PlanningChoice, 0, len(rows))
	for _, row := range rows {
		choices = append(choices, row.toDomain())
	}
	return choices, nil
}

func (r restChoice) toDomain() domain.PlanningChoice {
	entity := domain.PlanningChoice{
		ID:               string(r.ID),
		Day:              r.Day,
		ColumnNumber:     r.ColumnNumber,
		ColumnLabel:      r.ColumnLabel,
		SlotTypeCode:     r.SlotTypeCode,
		PlanningDayLabel: r.PlanningDayLabel,
		ActivityType:     r.ActivityType,
		GuardNature:      r.GuardNature,
		Trigram:          r.Trigram,
		UserType:         r.UserType,
		ChoiceOrder:      r.ChoiceOrder,
		Etat:             r.Etat,
	}
	if t, ok := parseTimestamp(r.CreatedAt); ok {
		entity.CreatedAt = t
	}
	return entity
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func restErrorFrom(resp *resty.Response) error {
	var body restError
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		slog.Error("supabase_error", "status", resp.StatusCode(), "code", body.Code, "message", body.Message)
		return fmt.Errorf("supabase error (%d): %s", resp.StatusCode(), body.Message)
	}
	slog.Error("supabase_error", "status", resp.StatusCode())
	return fmt.Errorf("supabase error (%d)", resp.StatusCode())
}
