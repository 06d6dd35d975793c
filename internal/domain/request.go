package domain

import (
	"context"
	"time"
)

// RequestStatus is the state of a participation request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest represents a user's request to participate in an
// event. At most one request exists per (requester, event) pair; requests
// are never physically deleted.
// swagger:model ParticipationRequest
type ParticipationRequest struct {
	ID          string        `json:"id"`
	EventID     string        `json:"event_id"`
	RequesterID string        `json:"requester_id"`
	Status      RequestStatus `json:"status"`
	Created     time.Time     `json:"created"`
}

// StatusUpdateResult partitions the requests touched by a bulk status change.
// swagger:model StatusUpdateResult
type StatusUpdateResult struct {
	ConfirmedRequests []*ParticipationRequest `json:"confirmed_requests"`
	RejectedRequests  []*ParticipationRequest `json:"rejected_requests"`
}

// ParticipationRequestRepository defines storage for the participation
// ledger. Counts are derived by query; there is no stored running total.
type ParticipationRequestRepository interface {
	Create(ctx context.Context, req *ParticipationRequest) error
	GetByIDAndRequester(ctx context.Context, id, requesterID string) (*ParticipationRequest, error)
	ExistsByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (bool, error)
	ExistsByRequesterAndEventAndStatus(ctx context.Context, requesterID, eventID string, status RequestStatus) (bool, error)
	CountByEventAndStatus(ctx context.Context, eventID string, status RequestStatus) (int64, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID string) ([]*ParticipationRequest, error)
	ListByEventAndIDs(ctx context.Context, eventID string, ids []string) ([]*ParticipationRequest, error)
	UpdateStatus(ctx context.Context, id string, status RequestStatus) error
	UpdateStatuses(ctx context.Context, ids []string, status RequestStatus) error
}

// AdmissionService decides whether participation requests are admitted given
// the event's capacity and moderation flag. Operations that read the
// confirmed count and then write statuses serialize per event.
type AdmissionService interface {
	// Join files a participation request for the user. When the event has no
	// limit or moderation is off the request is confirmed immediately,
	// otherwise it stays pending for the organizer.
	Join(ctx context.Context, userID, eventID string) (*ParticipationRequest, error)
	// Cancel sets the caller's own request to CANCELED regardless of its
	// prior status; canceling a confirmed request frees its capacity slot.
	Cancel(ctx context.Context, userID, requestID string) (*ParticipationRequest, error)
	ListUserRequests(ctx context.Context, userID string) ([]*ParticipationRequest, error)
	// ListEventRequests returns the event's requests to its initiator.
	// Non-initiators get ErrNotFound rather than a permission error.
	ListEventRequests(ctx context.Context, userID, eventID string) ([]*ParticipationRequest, error)
	// ChangeStatus confirms or rejects a batch of pending requests. The batch
	// is all-or-nothing: any member that is not currently PENDING aborts the
	// whole call with no writes. Confirmation processes request IDs in
	// ascending order and rejects the overflow once the limit is reached,
	// cascading rejection to every other pending request of the event.
	ChangeStatus(ctx context.Context, userID, eventID string, requestIDs []string, desired RequestStatus) (*StatusUpdateResult, error)
}
