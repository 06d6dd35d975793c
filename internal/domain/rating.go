package domain

import (
	"context"
	"time"
)

// EventRating is a single user's like or dislike of an event, unique per
// (user, event) pair with upsert semantics.
// swagger:model EventRating
type EventRating struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	EventID string    `json:"event_id"`
	IsLike  bool      `json:"is_like"`
	Created time.Time `json:"created"`
}

// RatingSummary aggregates an event's votes. Score is the integer percentage
// of likes, nil when there are no votes at all (undefined, not zero).
// swagger:model RatingSummary
type RatingSummary struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
	Total    int64 `json:"total"`
	Score    *int  `json:"score"`
}

// EventRatingRepository defines storage for event ratings.
type EventRatingRepository interface {
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (*EventRating, error)
	Upsert(ctx context.Context, rating *EventRating) error
	Delete(ctx context.Context, userID, eventID string) error
	CountByEvent(ctx context.Context, eventID string, isLike bool) (int64, error)
}

// RatingService gates votes on confirmed participation and aggregates them.
type RatingService interface {
	// Rate records or overwrites the user's vote. Only confirmed participants
	// of a published event may vote, and never for their own event.
	Rate(ctx context.Context, userID, eventID string, isLike bool) error
	GetEventRating(ctx context.Context, eventID string) (*RatingSummary, error)
	DeleteRating(ctx context.Context, userID, eventID string) error
	// GetUserRating returns the user's vote, or nil when they have none.
	GetUserRating(ctx context.Context, userID, eventID string) (*bool, error)
}
