package choice

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"planning/internal/adapters/storage"
	domain "planning/internal/domain/choice"
)

const choiceColumns = "id, day, column_number, column_label, slot_type_code, planning_day_label, activity_type, guard_nature, trigram, user_type, choice_order, etat, created_at"

// SQLiteStore implements Store using SQLite. It backs local development and
// tests; production uses the hosted data service adapter.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new choice store over db.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListByOwner retrieves the choices of one trigram+userType group.
// PRE: trigram and userType are non-empty
// POST: Returns matching choices ordered ascending by choice_order
func (s *SQLiteStore) ListByOwner(ctx context.Context, trigram, userType string) ([]domain.PlanningChoice, error) {
	return s.queryChoices(ctx,
		"SELECT "+choiceColumns+" FROM planning_choices WHERE trigram = ? AND user_type = ? ORDER BY choice_order ASC",
		trigram, userType)
}

// ListAll retrieves every choice.
// PRE: none
// POST: Returns all choices ordered descending by created_at
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.PlanningChoice, error) {
	return s.queryChoices(ctx,
		"SELECT " + choiceColumns + " FROM planning_choices ORDER BY created_at DESC")
}

// UpdateEtat sets the workflow state of a single choice.
// PRE: id is non-empty, etat is a valid workflow state
// POST: The matching row's etat is updated
func (s *SQLiteStore) UpdateEtat(ctx context.Context, id, etat string) error {
	if !domain.IsValidEtat(etat) {
		return domain.ErrInvalidEtat
	}
	res, err := s.db.ExecContext(ctx, "UPDATE planning_choices SET etat = ? WHERE id = ?", etat, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("planning choice not found: %s", id)
	}
	return nil
}

// Save persists a PlanningChoice. Used only by dev-mode seeding and tests;
// the hosted backend owns row creation in production.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.PlanningChoice) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO planning_choices ("+choiceColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET day=excluded.day, column_number=excluded.column_number, column_label=excluded.column_label, slot_type_code=excluded.slot_type_code, planning_day_label=excluded.planning_day_label, activity_type=excluded.activity_type, guard_nature=excluded.guard_nature, trigram=excluded.trigram, user_type=excluded.user_type, choice_order=excluded.choice_order, etat=excluded.etat, created_at=excluded.created_at",
		entity.ID, entity.Day, entity.ColumnNumber, entity.ColumnLabel, entity.SlotTypeCode,
		entity.PlanningDayLabel, entity.ActivityType, entity.GuardNature, entity.Trigram,
		entity.UserType, entity.ChoiceOrder, entity.Status(), entity.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Count returns the number of stored choices. Used by idempotent seeding.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM planning_choices").Scan(&n)
	return n, err
}

func (s *SQLiteStore) queryChoices(ctx context.Context, query string, args ...any) ([]domain.PlanningChoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.PlanningChoice
	for rows.Next() {
		entity, err := scanChoice(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanChoice(rows *sql.Rows) (domain.PlanningChoice, error) {
	var entity domain.PlanningChoice
	var createdAt string
	err := rows.Scan(&entity.ID, &entity.Day, &entity.ColumnNumber, &entity.ColumnLabel,
		&entity.SlotTypeCode, &entity.PlanningDayLabel, &entity.ActivityType, &entity.GuardNature,
		&entity.Trigram, &entity.UserType, &entity.ChoiceOrder, &entity.Etat, &createdAt)
	if err != nil {
		return domain.PlanningChoice{}, err
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		entity.CreatedAt = t
	}
	return entity, nil
}
