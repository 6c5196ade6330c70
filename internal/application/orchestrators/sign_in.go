package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"planning/internal/domain/role"
)

// SignInInput carries input for the sign-in orchestrator.
type SignInInput struct {
	Trigram string
	Role    string
}

// SignInResult carries the session record fields for a successful sign-in.
type SignInResult struct {
	Trigram        string
	Role           string
	NormalizedRole string
}

var (
	ErrEmptyTrigram = errors.New("le trigramme est obligatoire")
	ErrEmptyRole    = errors.New("le rôle est obligatoire")
)

// ExecuteSignIn validates the identifier pair and stamps the normalized role.
// Role assignment itself is an external concern: no credential is checked
// here, only presence and canonical form.
// PRE: input fields are raw form values
// POST: Returns the normalized session fields, or a validation error
func ExecuteSignIn(ctx context.Context, input SignInInput) (SignInResult, error) {
	trigram := strings.ToUpper(strings.TrimSpace(input.Trigram))
	if trigram == "" {
		return SignInResult{}, ErrEmptyTrigram
	}
	normalized := role.Normalize(input.Role)
	if normalized == "" {
		return SignInResult{}, ErrEmptyRole
	}

	slog.Info("auth_event", "event", "sign_in", "trigram", trigram, "role", normalized)

	return SignInResult{
		Trigram:        trigram,
		Role:           strings.TrimSpace(input.Role),
		NormalizedRole: normalized,
	}, nil
}
