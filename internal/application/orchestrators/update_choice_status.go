package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"planning/internal/adapters/email"
	domain "planning/internal/domain/choice"
)

// ChoiceUpdater is the store interface needed by UpdateChoiceStatus.
type ChoiceUpdater interface {
	UpdateEtat(ctx context.Context, id, etat string) error
}

// UpdateChoiceStatusInput carries input for a moderation decision.
type UpdateChoiceStatusInput struct {
	ChoiceID  string
	Etat      string
	DecidedBy string // trigram of the administrator
}

// UpdateChoiceStatusDeps holds dependencies for UpdateChoiceStatus.
type UpdateChoiceStatusDeps struct {
	ChoiceStore ChoiceUpdater
	Sender      email.Sender // optional; nil disables notifications
	NotifyTo    string       // planning inbox for decision notifications
	NotifyFrom  string
}

// ExecuteUpdateChoiceStatus applies a moderation decision to one choice.
// The notification email is best-effort: a send failure never fails the
// decision, and there are no retries.
// PRE: deps.ChoiceStore is a connected backend handle
// POST: The row's etat is updated; local state is untouched on failure
func ExecuteUpdateChoiceStatus(ctx context.Context, input UpdateChoiceStatusInput, deps UpdateChoiceStatusDeps) error {
	if strings.TrimSpace(input.ChoiceID) == "" {
		return domain.ErrEmptyID
	}
	if !domain.IsValidEtat(input.Etat) {
		return domain.ErrInvalidEtat
	}

	if err := deps.ChoiceStore.UpdateEtat(ctx, input.ChoiceID, input.Etat); err != nil {
		slog.Error("choice_status_update_failed", "choice_id", input.ChoiceID, "etat", input.Etat, "error", err)
		return err
	}

	slog.Info("choice_status_updated", "choice_id", input.ChoiceID, "etat", input.Etat, "decided_by", input.DecidedBy)

	if deps.Sender != nil && deps.NotifyTo != "" {
		notifyDecision(ctx, input, deps)
	}
	return nil
}

func notifyDecision(ctx context.Context, input UpdateChoiceStatusInput, deps UpdateChoiceStatusDeps) {
	subject := fmt.Sprintf("Demande de garde %s — %s", input.ChoiceID, input.Etat)
	html := fmt.Sprintf("<p>La demande <strong>%s</strong> est passée à l'état <strong>%s</strong> (décision de %s).</p>",
		input.ChoiceID, input.Etat, input.DecidedBy)
	_, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{deps.NotifyTo},
		From:    deps.NotifyFrom,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		slog.Warn("decision_notification_failed", "choice_id", input.ChoiceID, "error", err)
	}
}
