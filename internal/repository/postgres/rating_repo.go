package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"explorewithme/internal/domain"
)

type ratingRepository struct {
	DB *sql.DB
}

func NewEventRatingRepository(db *sql.DB) domain.EventRatingRepository {
	return &ratingRepository{DB: db}
}

func (r *ratingRepository) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.EventRating, error) {
	query := `
		SELECT id, user_id, event_id, is_like, created
		FROM event_ratings
		WHERE user_id = $1 AND event_id = $2
	`
	rating := &domain.EventRating{}
	err := r.DB.QueryRowContext(ctx, query, userID, eventID).
		Scan(&rating.ID, &rating.UserID, &rating.EventID, &rating.IsLike, &rating.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rating, nil
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *domain.EventRating) error {
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	// A second vote by the same user overwrites the first.
	query := `
		INSERT INTO event_ratings (id, user_id, event_id, is_like, created)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, event_id)
		DO UPDATE SET is_like = EXCLUDED.is_like, created = EXCLUDED.created
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		rating.ID, rating.UserID, rating.EventID, rating.IsLike, rating.Created,
	).Scan(&rating.ID)
}

func (r *ratingRepository) Delete(ctx context.Context, userID, eventID string) error {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM event_ratings WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ratingRepository) CountByEvent(ctx context.Context, eventID string, isLike bool) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_ratings WHERE event_id = $1 AND is_like = $2`,
		eventID, isLike,
	).Scan(&count)
	return count, err
}
