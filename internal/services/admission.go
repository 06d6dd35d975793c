package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"explorewithme/internal/domain"
)

type admissionService struct {
	userRepo    domain.UserRepository
	eventRepo   domain.EventRepository
	requestRepo domain.ParticipationRequestRepository
	locks       *eventLocker
	now         func() time.Time
}

// NewAdmissionService creates an AdmissionService with the given repositories.
func NewAdmissionService(
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	requestRepo domain.ParticipationRequestRepository,
) domain.AdmissionService {
	return &admissionService{
		userRepo:    userRepo,
		eventRepo:   eventRepo,
		requestRepo: requestRepo,
		locks:       newEventLocker(),
		now:         time.Now,
	}
}

func (s *admissionService) Join(ctx context.Context, userID, eventID string) (*domain.ParticipationRequest, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if event.InitiatorID == userID {
		return nil, fmt.Errorf("%w: initiator cannot request participation in own event", domain.ErrConflict)
	}
	if event.State != domain.EventStatePublished {
		return nil, fmt.Errorf("%w: cannot participate in unpublished event", domain.ErrConflict)
	}

	// The duplicate check, the confirmed count, and the insert must be one
	// atomic unit per event: the count is derived, not stored, so it has to
	// be re-read inside the same critical section as the write it guards.
	unlock := s.locks.Lock(eventID)
	defer unlock()

	exists, err := s.requestRepo.ExistsByRequesterAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate request: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: duplicate request", domain.ErrConflict)
	}

	confirmed, err := s.requestRepo.CountByEventAndStatus(ctx, eventID, domain.RequestStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	if event.ParticipantLimit > 0 && confirmed >= int64(event.ParticipantLimit) {
		return nil, fmt.Errorf("%w: the participant limit has been reached", domain.ErrConflict)
	}

	status := domain.RequestStatusPending
	if event.ParticipantLimit == 0 || !event.RequestModeration {
		status = domain.RequestStatusConfirmed
	}

	req := &domain.ParticipationRequest{
		EventID:     eventID,
		RequesterID: userID,
		Status:      status,
		Created:     s.now(),
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create participation request: %w", err)
	}
	return req, nil
}

func (s *admissionService) Cancel(ctx context.Context, userID, requestID string) (*domain.ParticipationRequest, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	req, err := s.requestRepo.GetByIDAndRequester(ctx, requestID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}

	// Unconditional on the prior status: canceling an already confirmed
	// request frees its slot for the next bulk-confirm pass.
	if err := s.requestRepo.UpdateStatus(ctx, req.ID, domain.RequestStatusCanceled); err != nil {
		return nil, fmt.Errorf("cancel request: %w", err)
	}
	req.Status = domain.RequestStatusCanceled
	return req, nil
}

func (s *admissionService) ListUserRequests(ctx context.Context, userID string) ([]*domain.ParticipationRequest, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}
	reqs, err := s.requestRepo.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.ParticipationRequest{}
	}
	return reqs, nil
}

func (s *admissionService) ListEventRequests(ctx context.Context, userID, eventID string) ([]*domain.ParticipationRequest, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.InitiatorID != userID {
		// Not found, not forbidden: the event's existence stays hidden.
		return nil, domain.ErrNotFound
	}

	reqs, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event requests: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.ParticipationRequest{}
	}
	return reqs, nil
}

func (s *admissionService) ChangeStatus(ctx context.Context, userID, eventID string, requestIDs []string, desired domain.RequestStatus) (*domain.StatusUpdateResult, error) {
	if desired != domain.RequestStatusConfirmed && desired != domain.RequestStatusRejected {
		return nil, fmt.Errorf("%w: status must be CONFIRMED or REJECTED", domain.ErrInvalidInput)
	}

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

	unlock := s.locks.Lock(eventID)
	defer unlock()

	requests, err := s.requestRepo.ListByEventAndIDs(ctx, eventID, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if len(requests) != len(requestIDs) {
		// Some listed id does not resolve to a request of this event.
		return nil, domain.ErrNotFound
	}

	// All-or-nothing precondition: a single non-pending member aborts the
	// batch before any status is written.
	for _, req := range requests {
		if req.Status != domain.RequestStatusPending {
			return nil, fmt.Errorf("%w: request must have status PENDING", domain.ErrConflict)
		}
	}

	result := &domain.StatusUpdateResult{
		ConfirmedRequests: []*domain.ParticipationRequest{},
		RejectedRequests:  []*domain.ParticipationRequest{},
	}

	if desired == domain.RequestStatusRejected {
		ids := make([]string, 0, len(requests))
		for _, req := range requests {
			ids = append(ids, req.ID)
			req.Status = domain.RequestStatusRejected
			result.RejectedRequests = append(result.RejectedRequests, req)
		}
		if err := s.requestRepo.UpdateStatuses(ctx, ids, domain.RequestStatusRejected); err != nil {
			return nil, fmt.Errorf("reject requests: %w", err)
		}
		return result, nil
	}

	// Deterministic admission order regardless of how the ids were listed.
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })

	confirmed, err := s.requestRepo.CountByEventAndStatus(ctx, eventID, domain.RequestStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}

	limit := int64(event.ParticipantLimit)
	var confirmIDs, rejectIDs []string
	for _, req := range requests {
		if limit > 0 && confirmed >= limit {
			req.Status = domain.RequestStatusRejected
			rejectIDs = append(rejectIDs, req.ID)
			result.RejectedRequests = append(result.RejectedRequests, req)
			continue
		}
		req.Status = domain.RequestStatusConfirmed
		confirmed++
		confirmIDs = append(confirmIDs, req.ID)
		result.ConfirmedRequests = append(result.ConfirmedRequests, req)
	}

	// Capacity exhaustion cascades to the whole pending queue, not just the
	// requests named in this batch.
	if limit > 0 && confirmed >= limit {
		all, err := s.requestRepo.ListByEvent(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("list event requests: %w", err)
		}
		inBatch := make(map[string]struct{}, len(requests))
		for _, req := range requests {
			inBatch[req.ID] = struct{}{}
		}
		for _, req := range all {
			if req.Status != domain.RequestStatusPending {
				continue
			}
			if _, ok := inBatch[req.ID]; ok {
				continue
			}
			req.Status = domain.RequestStatusRejected
			rejectIDs = append(rejectIDs, req.ID)
			result.RejectedRequests = append(result.RejectedRequests, req)
		}
	}

	if len(confirmIDs) > 0 {
		if err := s.requestRepo.UpdateStatuses(ctx, confirmIDs, domain.RequestStatusConfirmed); err != nil {
			return nil, fmt.Errorf("confirm requests: %w", err)
		}
	}
	if len(rejectIDs) > 0 {
		if err := s.requestRepo.UpdateStatuses(ctx, rejectIDs, domain.RequestStatusRejected); err != nil {
			return nil, fmt.Errorf("reject requests: %w", err)
		}
	}
	return result, nil
}

func (s *admissionService) ensureUserExists(ctx context.Context, userID string) error {
	ok, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
