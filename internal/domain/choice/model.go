package choice

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Guard nature constants
const (
	NatureNormale = "normale"
	NatureBonne   = "bonne"
)

// Workflow state constants for a planning choice.
const (
	EtatPending  = "en attente"
	EtatAccepted = "validé"
	EtatRejected = "refusé"
)

// ValidEtats contains all valid workflow states.
var ValidEtats = []string{EtatPending, EtatAccepted, EtatRejected}

// Domain errors
var (
	ErrEmptyID      = errors.New("choice ID cannot be empty")
	ErrEmptyTrigram = errors.New("trigram cannot be empty")
	ErrInvalidEtat  = errors.New("etat must be one of: en attente, validé, refusé")
)

// PlanningChoice represents one ranked slot selection made by a staff member.
// Rows are owned by the backend data service; this application reads them and
// updates the etat field only. choice_order uniqueness and contiguity per
// (trigram, user_type) group is enforced by the backend.
type PlanningChoice struct {
	ID               string
	Day              string // slot date, ISO or timestamp form as stored
	ColumnNumber     int
	ColumnLabel      string
	SlotTypeCode     string
	PlanningDayLabel string
	ActivityType     string
	GuardNature      string // normale or bonne
	Trigram          string // owner identifier
	UserType         string // role the choice was made under
	ChoiceOrder      int    // zero-based priority within the owner+role group
	Etat             string // workflow status, defaults to en attente
	CreatedAt        time.Time
}

// Validate checks if the PlanningChoice has valid data.
// PRE: PlanningChoice struct is populated
// POST: Returns nil if valid, error otherwise
func (c *PlanningChoice) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Trigram) == "" {
		return ErrEmptyTrigram
	}
	if c.Etat != "" && !IsValidEtat(c.Etat) {
		return ErrInvalidEtat
	}
	return nil
}

// Status returns the workflow state, falling back to en attente when unset.
func (c *PlanningChoice) Status() string {
	if c.Etat == "" {
		return EtatPending
	}
	return c.Etat
}

// QualityLabel returns the display label for the guard nature.
func (c *PlanningChoice) QualityLabel() string {
	if c.GuardNature == NatureBonne {
		return "Bonne garde"
	}
	return "Garde normale"
}

// Nature returns the guard nature, treating anything but bonne as normale.
func (c *PlanningChoice) Nature() string {
	if c.GuardNature == NatureBonne {
		return NatureBonne
	}
	return NatureNormale
}

// IsValidEtat reports whether etat is a recognized workflow state.
func IsValidEtat(etat string) bool {
	for _, e := range ValidEtats {
		if e == etat {
			return true
		}
	}
	return false
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// dayFormats covers the date shapes the backend returns for day columns.
var dayFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDay parses a stored day value.
// PRE: value is a raw day string from the backend
// POST: Returns the parsed time, or ok=false when empty/unparseable
func ParseDay(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFormats {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDay renders a day value as a long French calendar date.
// Missing or unparseable values render as the fixed placeholder.
func FormatDay(value string) string {
	t, ok := ParseDay(value)
	if !ok {
		if strings.TrimSpace(value) == "" {
			return "Date inconnue"
		}
		return value
	}
	return formatLongFrench(t)
}

// FormatDayISO truncates a day value to its local calendar date in ISO form.
// Used by the moderation console's date filter.
func FormatDayISO(value string) string {
	t, ok := ParseDay(value)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// FormatCreatedAt renders an audit timestamp as a short French date-time.
func FormatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006 15:04")
}

func formatLongFrench(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + frenchMonths[int(t.Month())-1] + " " + strconv.Itoa(t.Year())
}
