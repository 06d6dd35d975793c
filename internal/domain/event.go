package domain

import (
	"context"
	"time"
)

// EventState is the lifecycle state of an event.
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// State actions accepted by event updates. User updates may send an event to
// review or cancel the review; admin updates publish or reject it.
const (
	StateActionSendToReview = "SEND_TO_REVIEW"
	StateActionCancelReview = "CANCEL_REVIEW"
	StateActionPublishEvent = "PUBLISH_EVENT"
	StateActionRejectEvent  = "REJECT_EVENT"
)

// Event represents a public event users can request to participate in.
// ParticipantLimit of 0 means unlimited. PublishedOn is set exactly once,
// when the event transitions from PENDING to PUBLISHED.
// swagger:model Event
type Event struct {
	ID                string     `json:"id"`
	InitiatorID       string     `json:"initiator_id"`
	CategoryID        string     `json:"category_id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	State             EventState `json:"state"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participant_limit"`
	RequestModeration bool       `json:"request_moderation"`
	EventDate         time.Time  `json:"event_date"`
	CreatedOn         time.Time  `json:"created_on"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
}

// EventDetails is an event decorated with derived read-side counters.
// Views is best-effort: it defaults to 0 when the stats collaborator fails.
// swagger:model EventDetails
type EventDetails struct {
	Event             *Event `json:"event"`
	ConfirmedRequests int64  `json:"confirmed_requests"`
	Views             int64  `json:"views"`
}

// EventPatch carries the optional fields of an event update. Nil fields are
// left unchanged. StateAction, when non-empty, is one of the StateAction
// constants.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *string
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	EventDate         *time.Time
	StateAction       string
}

// EventSort selects the ordering of public search results.
type EventSort string

const (
	EventSortByDate  EventSort = "EVENT_DATE"
	EventSortByViews EventSort = "VIEWS"
)

// EventFilter is the predicate set for event searches. Zero-value fields are
// not applied. From/Size implement offset pagination.
type EventFilter struct {
	Text          string
	Categories    []string
	Initiators    []string
	States        []EventState
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          EventSort
	From          int
	Size          int
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	ListByInitiator(ctx context.Context, initiatorID string, from, size int) ([]*Event, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Event, error)
	Search(ctx context.Context, filter *EventFilter) ([]*Event, error)
	ExistsByCategory(ctx context.Context, categoryID string) (bool, error)
}

// EventService defines the event lifecycle operations: initiator-side
// creation and editing, admin moderation, and public reads decorated with
// view counts.
type EventService interface {
	Create(ctx context.Context, userID string, event *Event) (*EventDetails, error)
	UpdateByUser(ctx context.Context, userID, eventID string, patch *EventPatch) (*EventDetails, error)
	UpdateByAdmin(ctx context.Context, eventID string, patch *EventPatch) (*EventDetails, error)
	GetUserEvent(ctx context.Context, userID, eventID string) (*EventDetails, error)
	ListUserEvents(ctx context.Context, userID string, from, size int) ([]*EventDetails, error)
	GetPublicByID(ctx context.Context, eventID, requestURI, ip string) (*EventDetails, error)
	SearchPublic(ctx context.Context, filter *EventFilter, requestURI, ip string) ([]*EventDetails, error)
	SearchAdmin(ctx context.Context, filter *EventFilter) ([]*EventDetails, error)
}
