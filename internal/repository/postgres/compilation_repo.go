package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"explorewithme/internal/domain"
)

type compilationRepository struct {
	DB *sql.DB
}

func NewCompilationRepository(db *sql.DB) domain.CompilationRepository {
	return &compilationRepository{DB: db}
}

func (r *compilationRepository) Create(ctx context.Context, comp *domain.Compilation, eventIDs []string) error {
	if comp.ID == "" {
		comp.ID = uuid.New().String()
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO compilations (id, title, pinned) VALUES ($1, $2, $3)`,
		comp.ID, comp.Title, comp.Pinned); err != nil {
		return err
	}
	if err := insertCompilationEvents(ctx, tx, comp.ID, eventIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *compilationRepository) GetByID(ctx context.Context, id string) (*domain.Compilation, error) {
	comp := &domain.Compilation{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, title, pinned FROM compilations WHERE id = $1`, id,
	).Scan(&comp.ID, &comp.Title, &comp.Pinned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	events, err := r.eventsOf(ctx, comp.ID)
	if err != nil {
		return nil, err
	}
	comp.Events = events
	return comp, nil
}

func (r *compilationRepository) Update(ctx context.Context, comp *domain.Compilation, eventIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE compilations SET title = $2, pinned = $3 WHERE id = $1`,
		comp.ID, comp.Title, comp.Pinned)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM compilation_events WHERE compilation_id = $1`, comp.ID); err != nil {
		return err
	}
	if err := insertCompilationEvents(ctx, tx, comp.ID, eventIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *compilationRepository) List(ctx context.Context, pinned *bool, from, size int) ([]*domain.Compilation, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if pinned != nil {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT id, title, pinned FROM compilations
			WHERE pinned = $1 ORDER BY id OFFSET $2 LIMIT $3
		`, *pinned, from, size)
	} else {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT id, title, pinned FROM compilations
			ORDER BY id OFFSET $1 LIMIT $2
		`, from, size)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comps := make([]*domain.Compilation, 0)
	for rows.Next() {
		comp := &domain.Compilation{}
		if err := rows.Scan(&comp.ID, &comp.Title, &comp.Pinned); err != nil {
			return nil, err
		}
		comps = append(comps, comp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, comp := range comps {
		events, err := r.eventsOf(ctx, comp.ID)
		if err != nil {
			return nil, err
		}
		comp.Events = events
	}
	return comps, nil
}

func (r *compilationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *compilationRepository) eventsOf(ctx context.Context, compilationID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events e
		JOIN compilation_events ce ON ce.event_id = e.id
		WHERE ce.compilation_id = $1
		ORDER BY e.id
	`, prefixedEventColumns("e"))
	rows, err := r.DB.QueryContext(ctx, query, compilationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func prefixedEventColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.initiator_id, %[1]s.category_id, %[1]s.title,
		%[1]s.annotation, %[1]s.description, %[1]s.state, %[1]s.paid, %[1]s.participant_limit,
		%[1]s.request_moderation, %[1]s.event_date, %[1]s.created_on, %[1]s.published_on`, alias)
}

func insertCompilationEvents(ctx context.Context, tx *sql.Tx, compilationID string, eventIDs []string) error {
	for _, eventID := range eventIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO compilation_events (compilation_id, event_id) VALUES ($1, $2)`,
			compilationID, eventID); err != nil {
			return err
		}
	}
	return nil
}
