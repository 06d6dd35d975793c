package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"explorewithme/internal/domain"
)

// Minimum gap between the moment of a write and the event date it sets.
// User edits get the stricter threshold; admin edits a shorter one.
const (
	userEventDateLead  = 2 * time.Hour
	adminEventDateLead = 1 * time.Hour
)

// statsAppName identifies this service in recorded endpoint hits.
const statsAppName = "explorewithme"

type eventService struct {
	eventRepo   domain.EventRepository
	userRepo    domain.UserRepository
	requestRepo domain.ParticipationRequestRepository
	stats       domain.StatsClient
	logger      *slog.Logger
	now         func() time.Time
}

// NewEventService creates an EventService. The stats client is advisory:
// its failures are logged and never surface to callers.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	requestRepo domain.ParticipationRequestRepository,
	stats domain.StatsClient,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo:   eventRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		stats:       stats,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *eventService) Create(ctx context.Context, userID string, event *domain.Event) (*domain.EventDetails, error) {
	ok, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	if err := s.checkEventDate(event.EventDate, userEventDateLead); err != nil {
		return nil, err
	}

	event.InitiatorID = userID
	event.State = domain.EventStatePending
	event.CreatedOn = s.now()
	event.PublishedOn = nil

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return s.enrich(ctx, event)
}

func (s *eventService) UpdateByUser(ctx context.Context, userID, eventID string, patch *domain.EventPatch) (*domain.EventDetails, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.InitiatorID != userID {
		return nil, domain.ErrNotFound
	}
	if event.State == domain.EventStatePublished {
		return nil, fmt.Errorf("%w: cannot edit published event", domain.ErrConflict)
	}
	if patch.EventDate != nil {
		if err := s.checkEventDate(*patch.EventDate, userEventDateLead); err != nil {
			return nil, err
		}
	}

	switch patch.StateAction {
	case "":
	case domain.StateActionSendToReview:
		event.State = domain.EventStatePending
	case domain.StateActionCancelReview:
		event.State = domain.EventStateCanceled
	default:
		return nil, fmt.Errorf("%w: unknown state action %q", domain.ErrInvalidInput, patch.StateAction)
	}

	applyPatch(event, patch)
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.enrich(ctx, event)
}

func (s *eventService) UpdateByAdmin(ctx context.Context, eventID string, patch *domain.EventPatch) (*domain.EventDetails, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if patch.EventDate != nil {
		if err := s.checkEventDate(*patch.EventDate, adminEventDateLead); err != nil {
			return nil, err
		}
	}

	switch patch.StateAction {
	case "":
	case domain.StateActionPublishEvent:
		if event.State != domain.EventStatePending {
			return nil, fmt.Errorf("%w: cannot publish an event that is not pending", domain.ErrConflict)
		}
		event.State = domain.EventStatePublished
		publishedOn := s.now()
		event.PublishedOn = &publishedOn
	case domain.StateActionRejectEvent:
		if event.State == domain.EventStatePublished {
			return nil, fmt.Errorf("%w: cannot reject a published event", domain.ErrConflict)
		}
		event.State = domain.EventStateCanceled
	default:
		return nil, fmt.Errorf("%w: unknown state action %q", domain.ErrInvalidInput, patch.StateAction)
	}

	applyPatch(event, patch)
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.enrich(ctx, event)
}

func (s *eventService) GetUserEvent(ctx context.Context, userID, eventID string) (*domain.EventDetails, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.InitiatorID != userID {
		return nil, domain.ErrNotFound
	}
	return s.enrich(ctx, event)
}

func (s *eventService) ListUserEvents(ctx context.Context, userID string, from, size int) ([]*domain.EventDetails, error) {
	ok, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	events, err := s.eventRepo.ListByInitiator(ctx, userID, from, size)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.enrichAll(ctx, events)
}

func (s *eventService) GetPublicByID(ctx context.Context, eventID, requestURI, ip string) (*domain.EventDetails, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.State != domain.EventStatePublished {
		return nil, domain.ErrNotFound
	}

	s.safeHit(ctx, "/events/"+eventID, ip)

	views := s.fetchViews(ctx, eventID)
	// The hit just recorded may not be visible yet; the viewer always counts.
	if views == 0 {
		views = 1
	}

	confirmed, err := s.requestRepo.CountByEventAndStatus(ctx, eventID, domain.RequestStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	return &domain.EventDetails{Event: event, ConfirmedRequests: confirmed, Views: views}, nil
}

func (s *eventService) SearchPublic(ctx context.Context, filter *domain.EventFilter, requestURI, ip string) ([]*domain.EventDetails, error) {
	s.safeHit(ctx, requestURI, ip)

	if filter.RangeStart == nil && filter.RangeEnd == nil {
		start := s.now()
		filter.RangeStart = &start
	}
	if filter.RangeStart != nil && filter.RangeEnd != nil && filter.RangeEnd.Before(*filter.RangeStart) {
		return nil, fmt.Errorf("%w: range end before range start", domain.ErrInvalidInput)
	}
	filter.States = []domain.EventState{domain.EventStatePublished}

	events, err := s.eventRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}

	details, err := s.enrichAll(ctx, events)
	if err != nil {
		return nil, err
	}

	if filter.OnlyAvailable {
		available := details[:0]
		for _, d := range details {
			if d.Event.ParticipantLimit == 0 || d.ConfirmedRequests < int64(d.Event.ParticipantLimit) {
				available = append(available, d)
			}
		}
		details = available
	}

	if filter.Sort == domain.EventSortByViews {
		sort.SliceStable(details, func(i, j int) bool { return details[i].Views > details[j].Views })
	}
	return details, nil
}

func (s *eventService) SearchAdmin(ctx context.Context, filter *domain.EventFilter) ([]*domain.EventDetails, error) {
	events, err := s.eventRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return s.enrichAll(ctx, events)
}

func (s *eventService) checkEventDate(date time.Time, lead time.Duration) error {
	// A business-rule conflict, checked at write time, not input-shape time.
	if date.Before(s.now().Add(lead)) {
		return fmt.Errorf("%w: event date must be at least %s in the future", domain.ErrConflict, lead)
	}
	return nil
}

func (s *eventService) enrich(ctx context.Context, event *domain.Event) (*domain.EventDetails, error) {
	confirmed, err := s.requestRepo.CountByEventAndStatus(ctx, event.ID, domain.RequestStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	return &domain.EventDetails{
		Event:             event,
		ConfirmedRequests: confirmed,
		Views:             s.fetchViews(ctx, event.ID),
	}, nil
}

func (s *eventService) enrichAll(ctx context.Context, events []*domain.Event) ([]*domain.EventDetails, error) {
	details := make([]*domain.EventDetails, 0, len(events))
	for _, event := range events {
		d, err := s.enrich(ctx, event)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// safeHit records an endpoint hit, tolerating collaborator failures.
func (s *eventService) safeHit(ctx context.Context, uri, ip string) {
	if err := s.stats.Hit(ctx, statsAppName, uri, ip, s.now()); err != nil {
		s.logger.WarnContext(ctx, "could not record stats hit", "uri", uri, "err", err)
	}
}

// fetchViews returns the event's view count, or 0 when the stats
// collaborator is unavailable.
func (s *eventService) fetchViews(ctx context.Context, eventID string) int64 {
	uri := "/events/" + eventID
	views, err := s.stats.GetViews(ctx,
		s.now().AddDate(-100, 0, 0),
		s.now().Add(time.Second),
		[]string{uri},
		true,
	)
	if err != nil {
		return 0
	}
	return views[uri]
}

func applyPatch(event *domain.Event, patch *domain.EventPatch) {
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Annotation != nil {
		event.Annotation = *patch.Annotation
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		event.CategoryID = *patch.CategoryID
	}
	if patch.Paid != nil {
		event.Paid = *patch.Paid
	}
	if patch.ParticipantLimit != nil {
		event.ParticipantLimit = *patch.ParticipantLimit
	}
	if patch.RequestModeration != nil {
		event.RequestModeration = *patch.RequestModeration
	}
	if patch.EventDate != nil {
		event.EventDate = *patch.EventDate
	}
}
