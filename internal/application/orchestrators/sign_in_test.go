package orchestrators

import (
	"context"
	"errors"
	"testing"

	"planning/internal/domain/role"
)

// TestExecuteSignIn tests trigram/role validation and normalization.
func TestExecuteSignIn(t *testing.T) {
	tests := []struct {
		name           string
		input          SignInInput
		wantErr        error
		wantTrigram    string
		wantNormalized string
	}{
		{
			name:           "canonical medecin",
			input:          SignInInput{Trigram: "dup", Role: "medecin"},
			wantTrigram:    "DUP",
			wantNormalized: role.Medecin,
		},
		{
			name:           "accented alias",
			input:          SignInInput{Trigram: " mar ", Role: "Médecin"},
			wantTrigram:    "MAR",
			wantNormalized: role.Medecin,
		},
		{
			name:           "gestionnaire maps to admin",
			input:          SignInInput{Trigram: "ADM", Role: "gestionnaire"},
			wantTrigram:    "ADM",
			wantNormalized: role.Admin,
		},
		{
			name:    "blank trigram",
			input:   SignInInput{Trigram: "   ", Role: "medecin"},
			wantErr: ErrEmptyTrigram,
		},
		{
			name:    "blank role",
			input:   SignInInput{Trigram: "DUP", Role: "  "},
			wantErr: ErrEmptyRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExecuteSignIn(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Trigram != tt.wantTrigram {
				t.Errorf("Trigram = %q, want %q", result.Trigram, tt.wantTrigram)
			}
			if result.NormalizedRole != tt.wantNormalized {
				t.Errorf("NormalizedRole = %q, want %q", result.NormalizedRole, tt.wantNormalized)
			}
		})
	}
}
