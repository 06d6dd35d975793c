package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"explorewithme/internal/domain"
)

type ratingService struct {
	ratingRepo  domain.EventRatingRepository
	userRepo    domain.UserRepository
	eventRepo   domain.EventRepository
	requestRepo domain.ParticipationRequestRepository
	now         func() time.Time
}

// NewRatingService creates a RatingService with the given repositories.
func NewRatingService(
	ratingRepo domain.EventRatingRepository,
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	requestRepo domain.ParticipationRequestRepository,
) domain.RatingService {
	return &ratingService{
		ratingRepo:  ratingRepo,
		userRepo:    userRepo,
		eventRepo:   eventRepo,
		requestRepo: requestRepo,
		now:         time.Now,
	}
}

func (s *ratingService) Rate(ctx context.Context, userID, eventID string, isLike bool) error {
	ok, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	if event.InitiatorID == userID {
		return fmt.Errorf("%w: cannot rate own event", domain.ErrConflict)
	}
	if event.State != domain.EventStatePublished {
		return fmt.Errorf("%w: cannot rate unpublished event", domain.ErrConflict)
	}

	participated, err := s.requestRepo.ExistsByRequesterAndEventAndStatus(
		ctx, userID, eventID, domain.RequestStatusConfirmed)
	if err != nil {
		return fmt.Errorf("check participation: %w", err)
	}
	if !participated {
		return fmt.Errorf("%w: must have participated in event to rate it", domain.ErrConflict)
	}

	rating := &domain.EventRating{
		UserID:  userID,
		EventID: eventID,
		IsLike:  isLike,
		Created: s.now(),
	}
	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func (s *ratingService) GetEventRating(ctx context.Context, eventID string) (*domain.RatingSummary, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	likes, err := s.ratingRepo.CountByEvent(ctx, eventID, true)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	dislikes, err := s.ratingRepo.CountByEvent(ctx, eventID, false)
	if err != nil {
		return nil, fmt.Errorf("count dislikes: %w", err)
	}

	summary := &domain.RatingSummary{
		Likes:    likes,
		Dislikes: dislikes,
		Total:    likes + dislikes,
	}
	// No votes means the score is undefined, not zero.
	if summary.Total > 0 {
		score := int(math.Round(float64(likes) / float64(summary.Total) * 100))
		summary.Score = &score
	}
	return summary, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, userID, eventID string) error {
	if _, err := s.ratingRepo.GetByUserAndEvent(ctx, userID, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get rating: %w", err)
	}
	if err := s.ratingRepo.Delete(ctx, userID, eventID); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}

func (s *ratingService) GetUserRating(ctx context.Context, userID, eventID string) (*bool, error) {
	rating, err := s.ratingRepo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Three-valued: absent is "no opinion", not false.
			return nil, nil
		}
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return &rating.IsLike, nil
}
