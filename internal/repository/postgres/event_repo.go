package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"explorewithme/internal/domain"
)

const eventColumns = `id, initiator_id, category_id, title, annotation, description,
	state, paid, participant_limit, request_moderation, event_date, created_on, published_on`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO events (id, initiator_id, category_id, title, annotation, description,
			state, paid, participant_limit, request_moderation, event_date, created_on, published_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.InitiatorID, e.CategoryID, e.Title, e.Annotation, e.Description,
		string(e.State), e.Paid, e.ParticipantLimit, e.RequestModeration,
		e.EventDate, e.CreatedOn, e.PublishedOn,
	)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET category_id = $2, title = $3, annotation = $4, description = $5,
			state = $6, paid = $7, participant_limit = $8, request_moderation = $9,
			event_date = $10, published_on = $11
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.ID, e.CategoryID, e.Title, e.Annotation, e.Description,
		string(e.State), e.Paid, e.ParticipantLimit, e.RequestModeration,
		e.EventDate, e.PublishedOn,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID string, from, size int) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE initiator_id = $1
		ORDER BY id DESC
		OFFSET $2 LIMIT $3
	`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query, initiatorID, from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = ANY($1) ORDER BY id`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) Search(ctx context.Context, f *domain.EventFilter) ([]*domain.Event, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	n := 1

	if f.Text != "" {
		where = append(where, fmt.Sprintf("(annotation ILIKE $%d OR description ILIKE $%d)", n, n))
		args = append(args, "%"+f.Text+"%")
		n++
	}
	if len(f.Categories) > 0 {
		where = append(where, fmt.Sprintf("category_id = ANY($%d)", n))
		args = append(args, pq.Array(f.Categories))
		n++
	}
	if len(f.Initiators) > 0 {
		where = append(where, fmt.Sprintf("initiator_id = ANY($%d)", n))
		args = append(args, pq.Array(f.Initiators))
		n++
	}
	if len(f.States) > 0 {
		states := make([]string, 0, len(f.States))
		for _, s := range f.States {
			states = append(states, string(s))
		}
		where = append(where, fmt.Sprintf("state = ANY($%d)", n))
		args = append(args, pq.Array(states))
		n++
	}
	if f.Paid != nil {
		where = append(where, fmt.Sprintf("paid = $%d", n))
		args = append(args, *f.Paid)
		n++
	}
	if f.RangeStart != nil {
		where = append(where, fmt.Sprintf("event_date >= $%d", n))
		args = append(args, *f.RangeStart)
		n++
	}
	if f.RangeEnd != nil {
		where = append(where, fmt.Sprintf("event_date <= $%d", n))
		args = append(args, *f.RangeEnd)
		n++
	}

	size := f.Size
	if size <= 0 {
		size = 10
	}
	args = append(args, f.From, size)

	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE %s
		ORDER BY event_date
		OFFSET $%d LIMIT $%d
	`, eventColumns, strings.Join(where, " AND "), n, n+1)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) ExistsByCategory(ctx context.Context, categoryID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE category_id = $1)`, categoryID,
	).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var state string
	var publishedOn sql.NullTime
	err := row.Scan(
		&e.ID, &e.InitiatorID, &e.CategoryID, &e.Title, &e.Annotation, &e.Description,
		&state, &e.Paid, &e.ParticipantLimit, &e.RequestModeration,
		&e.EventDate, &e.CreatedOn, &publishedOn,
	)
	if err != nil {
		return nil, err
	}
	e.State = domain.EventState(state)
	if publishedOn.Valid {
		t := publishedOn.Time.UTC()
		e.PublishedOn = &t
	}
	return e, nil
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
