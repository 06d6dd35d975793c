package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"explorewithme/internal/domain"
)

type requestRepository struct {
	DB *sql.DB
}

// NewParticipationRequestRepository creates the Postgres-backed participation
// ledger. The requests table carries a unique (requester_id, event_id)
// constraint as a backstop to the service-level duplicate check.
func NewParticipationRequestRepository(db *sql.DB) domain.ParticipationRequestRepository {
	return &requestRepository{DB: db}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	query := `
		INSERT INTO requests (id, event_id, requester_id, status, created)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query,
		req.ID, req.EventID, req.RequesterID, string(req.Status), req.Created)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *requestRepository) GetByIDAndRequester(ctx context.Context, id, requesterID string) (*domain.ParticipationRequest, error) {
	query := `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE id = $1 AND requester_id = $2
	`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id, requesterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) ExistsByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM requests WHERE requester_id = $1 AND event_id = $2)`,
		requesterID, eventID,
	).Scan(&exists)
	return exists, err
}

func (r *requestRepository) ExistsByRequesterAndEventAndStatus(ctx context.Context, requesterID, eventID string, status domain.RequestStatus) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM requests WHERE requester_id = $1 AND event_id = $2 AND status = $3)`,
		requesterID, eventID, string(status),
	).Scan(&exists)
	return exists, err
}

func (r *requestRepository) CountByEventAndStatus(ctx context.Context, eventID string, status domain.RequestStatus) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = $2`,
		eventID, string(status),
	).Scan(&count)
	return count, err
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE requester_id = $1
		ORDER BY created DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE event_id = $1
		ORDER BY created ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *requestRepository) ListByEventAndIDs(ctx context.Context, eventID string, ids []string) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE event_id = $1 AND id = ANY($2)
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE requests SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *requestRepository) UpdateStatuses(ctx context.Context, ids []string, status domain.RequestStatus) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE requests SET status = $2 WHERE id = ANY($1)`, pq.Array(ids), string(status))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows != int64(len(ids)) {
		return domain.ErrNotFound
	}
	return nil
}

func scanRequest(row rowScanner) (*domain.ParticipationRequest, error) {
	req := &domain.ParticipationRequest{}
	var status string
	if err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &status, &req.Created); err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatus(status)
	return req, nil
}

func collectRequests(rows *sql.Rows) ([]*domain.ParticipationRequest, error) {
	reqs := make([]*domain.ParticipationRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
