package supabase_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"planning/internal/adapters/supabase"
	domain "planning/internal/domain/choice"
)

// TestStore_ListByOwner tests the PostgREST query shape and row decoding.
func TestStore_ListByOwner(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	var gotAPIKey, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": 7, "day": "2026-02-03", "column_number": 1, "column_label": "Garde jour",
			 "slot_type_code": "GJ", "guard_nature": "normale", "trigram": "DUP",
			 "user_type": "medecin", "choice_order": 0, "etat": "en attente",
			 "created_at": "2026-02-01T09:30:00.123456"},
			{"id": "abc", "day": "2026-02-04", "column_number": 2, "column_label": "Garde nuit",
			 "slot_type_code": "GN", "guard_nature": "bonne", "trigram": "DUP",
			 "user_type": "medecin", "choice_order": 1, "etat": "validé",
			 "created_at": "2026-02-01T10:00:00Z"}
		]`)
	}))
	defer server.Close()

	store := supabase.New(server.URL, "anon-key")
	choices, err := store.ListByOwner(context.Background(), "DUP", "medecin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/rest/v1/planning_choices" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery["trigram"] != "eq.DUP" || gotQuery["user_type"] != "eq.medecin" {
		t.Errorf("filters = %v", gotQuery)
	}
	if gotQuery["order"] != "choice_order.asc" {
		t.Errorf("order = %q, want choice_order.asc", gotQuery["order"])
	}
	if gotQuery["select"] == "" {
		t.Error("select param missing")
	}
	if gotAPIKey != "anon-key" || gotAuth != "Bearer anon-key" {
		t.Errorf("auth headers = %q / %q", gotAPIKey, gotAuth)
	}

	if len(choices) != 2 {
		t.Fatalf("choices=%d want 2", len(choices))
	}
	// Numeric and string row ids both decode.
	if choices[0].ID != "7" || choices[1].ID != "abc" {
		t.Errorf("ids = %q, %q", choices[0].ID, choices[1].ID)
	}
	if choices[0].Etat != domain.EtatPending || choices[1].Etat != domain.EtatAccepted {
		t.Errorf("etats = %q, %q", choices[0].Etat, choices[1].Etat)
	}
	if choices[0].CreatedAt.IsZero() || choices[1].CreatedAt.IsZero() {
		t.Error("created_at timestamps not parsed")
	}
}

// TestStore_ListAll tests the global listing's sort parameter.
func TestStore_ListAll(t *testing.T) {
	var gotOrder string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrder = r.URL.Query().Get("order")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[]`)
	}))
	defer server.Close()

	store := supabase.New(server.URL, "anon-key")
	choices, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOrder != "created_at.desc" {
		t.Errorf("order = %q, want created_at.desc", gotOrder)
	}
	if len(choices) != 0 {
		t.Errorf("choices=%d want 0", len(choices))
	}
}

// TestStore_UpdateEtat tests the PATCH request shape.
func TestStore_UpdateEtat(t *testing.T) {
	var gotMethod, gotFilter string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotFilter = r.URL.Query().Get("id")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	store := supabase.New(server.URL, "anon-key")
	if err := store.UpdateEtat(context.Background(), "42", domain.EtatRejected); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPatch {
		t.Errorf("method = %q, want PATCH", gotMethod)
	}
	if gotFilter != "eq.42" {
		t.Errorf("id filter = %q, want eq.42", gotFilter)
	}
	if gotBody["etat"] != domain.EtatRejected {
		t.Errorf("body = %v", gotBody)
	}
}

// TestStore_UpdateEtat_RejectsUnknownEtat tests local validation before any
// network call.
func TestStore_UpdateEtat_RejectsUnknownEtat(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	store := supabase.New(server.URL, "anon-key")
	if err := store.UpdateEtat(context.Background(), "42", "annulé"); err == nil {
		t.Error("expected error for unknown etat")
	}
	if called {
		t.Error("backend called despite invalid etat")
	}
}

// TestStore_ErrorResponse tests that PostgREST error bodies surface in the
// returned error.
func TestStore_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message": "JWT expired", "code": "PGRST301"}`)
	}))
	defer server.Close()

	store := supabase.New(server.URL, "bad-key")
	_, err := store.ListAll(context.Background())
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if got := err.Error(); got != "supabase error (401): JWT expired" {
		t.Errorf("error = %q", got)
	}
}
