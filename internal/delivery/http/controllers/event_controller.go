package controllers

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// queryTimeLayout is the timestamp format accepted in range query parameters.
const queryTimeLayout = "2006-01-02 15:04:05"

// writeServiceError maps domain sentinel errors onto the HTTP envelope.
// Unknown errors are logged and surface as 500.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// clientIP extracts the caller address for view accounting.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// NewEventRequest is the request body for POST /users/{userID}/events.
// request_moderation defaults to true when omitted.
type NewEventRequest struct {
	Title             string    `json:"title"`
	Annotation        string    `json:"annotation"`
	Description       string    `json:"description"`
	CategoryID        string    `json:"category_id"`
	Paid              bool      `json:"paid"`
	ParticipantLimit  int       `json:"participant_limit"`
	RequestModeration *bool     `json:"request_moderation"`
	EventDate         time.Time `json:"event_date"`
}

// Validate implements Validator.
func (n NewEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(n.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(n.Annotation) == "" {
		errs = append(errs, "annotation is required")
	}
	if n.CategoryID == "" {
		errs = append(errs, "category_id is required")
	}
	if n.EventDate.IsZero() {
		errs = append(errs, "event_date is required")
	}
	if n.ParticipantLimit < 0 {
		errs = append(errs, "participant_limit must be non-negative")
	}
	return errs
}

// UpdateEventRequest is the request body for user and admin event patches.
// All fields are optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title             *string    `json:"title"`
	Annotation        *string    `json:"annotation"`
	Description       *string    `json:"description"`
	CategoryID        *string    `json:"category_id"`
	Paid              *bool      `json:"paid"`
	ParticipantLimit  *int       `json:"participant_limit"`
	RequestModeration *bool      `json:"request_moderation"`
	EventDate         *time.Time `json:"event_date"`
	StateAction       string     `json:"state_action"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.ParticipantLimit != nil && *u.ParticipantLimit < 0 {
		errs = append(errs, "participant_limit must be non-negative")
	}
	return errs
}

func (u UpdateEventRequest) patch() *domain.EventPatch {
	return &domain.EventPatch{
		Title:             u.Title,
		Annotation:        u.Annotation,
		Description:       u.Description,
		CategoryID:        u.CategoryID,
		Paid:              u.Paid,
		ParticipantLimit:  u.ParticipantLimit,
		RequestModeration: u.RequestModeration,
		EventDate:         u.EventDate,
		StateAction:       u.StateAction,
	}
}

// EventSuccessResponse is the success envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.EventDetails `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// EventListSuccessResponse is the success envelope for event list endpoints.
type EventListSuccessResponse struct {
	Data  []*domain.EventDetails `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Create an event
// @Description Creates a new event in PENDING state for the initiator. The event date must be at least two hours ahead.
// @Tags events
// @Accept json
// @Produce json
// @Param userID path string true "Initiator ID"
// @Param event body NewEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event date too soon)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}
	var req NewEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	moderation := true
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}
	event := &domain.Event{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: moderation,
		EventDate:         req.EventDate,
	}
	details, err := c.Service.Create(r.Context(), userID, event)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, details)
}

// GetUserEvent godoc
// @Summary Get the initiator's own event
// @Tags events
// @Produce json
// @Param userID path string true "Initiator ID"
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events/{eventID} [get]
func (c *EventController) GetUserEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if userID == "" || eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID or eventID")
		return
	}
	details, err := c.Service.GetUserEvent(r.Context(), userID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// ListUserEvents godoc
// @Summary List the initiator's events
// @Tags events
// @Produce json
// @Param userID path string true "Initiator ID"
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events [get]
func (c *EventController) ListUserEvents(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}
	from, size := helpers.ParseOffset(r)
	events, err := c.Service.ListUserEvents(r.Context(), userID, from, size)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if events == nil {
		events = []*domain.EventDetails{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpdateByUser godoc
// @Summary Edit the initiator's own event
// @Description Edits a pending or canceled event. state_action may be SEND_TO_REVIEW or CANCEL_REVIEW. Published events are immutable to the initiator.
// @Tags events
// @Accept json
// @Produce json
// @Param userID path string true "Initiator ID"
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events/{eventID} [patch]
func (c *EventController) UpdateByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if userID == "" || eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID or eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	details, err := c.Service.UpdateByUser(r.Context(), userID, eventID, req.patch())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// UpdateByAdmin godoc
// @Summary Moderate an event
// @Description Publishes or rejects a pending event. state_action may be PUBLISH_EVENT or REJECT_EVENT.
// @Tags admin
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [patch]
func (c *EventController) UpdateByAdmin(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	details, err := c.Service.UpdateByAdmin(r.Context(), eventID, req.patch())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// GetPublic godoc
// @Summary Get a published event
// @Description Returns a published event with confirmed request count and views. Unpublished events read as not found. Each call registers a stats hit.
// @Tags public
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetPublic(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	details, err := c.Service.GetPublicByID(r.Context(), eventID, r.URL.Path, clientIP(r))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// SearchPublic godoc
// @Summary Search published events
// @Description Full public search: text, categories, paid, date range, only_available, sort (EVENT_DATE or VIEWS). Range start defaults to now. Each call registers a stats hit.
// @Tags public
// @Produce json
// @Param text query string false "Substring match on annotation or description"
// @Param categories query []string false "Category IDs"
// @Param paid query bool false "Paid filter"
// @Param rangeStart query string false "Lower bound, format 2006-01-02 15:04:05"
// @Param rangeEnd query string false "Upper bound, format 2006-01-02 15:04:05"
// @Param onlyAvailable query bool false "Drop events with exhausted limits"
// @Param sort query string false "EVENT_DATE or VIEWS"
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) SearchPublic(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	events, err := c.Service.SearchPublic(r.Context(), filter, r.URL.Path, clientIP(r))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if events == nil {
		events = []*domain.EventDetails{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// SearchAdmin godoc
// @Summary Search events across all states
// @Tags admin
// @Produce json
// @Param users query []string false "Initiator IDs"
// @Param states query []string false "Event states"
// @Param categories query []string false "Category IDs"
// @Param rangeStart query string false "Lower bound, format 2006-01-02 15:04:05"
// @Param rangeEnd query string false "Upper bound, format 2006-01-02 15:04:05"
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [get]
func (c *EventController) SearchAdmin(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	filter.Initiators = q["users"]
	for _, s := range q["states"] {
		filter.States = append(filter.States, domain.EventState(s))
	}
	events, err := c.Service.SearchAdmin(r.Context(), filter)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if events == nil {
		events = []*domain.EventDetails{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// parseSearchFilter reads the shared search query parameters. Timestamps use
// queryTimeLayout and are interpreted as UTC.
func parseSearchFilter(r *http.Request) (*domain.EventFilter, error) {
	q := r.URL.Query()
	filter := &domain.EventFilter{
		Text:       strings.TrimSpace(q.Get("text")),
		Categories: q["categories"],
	}
	if s := q.Get("paid"); s != "" {
		paid, err := strconv.ParseBool(s)
		if err != nil {
			return nil, errors.New("paid must be a boolean")
		}
		filter.Paid = &paid
	}
	if s := q.Get("rangeStart"); s != "" {
		t, err := time.ParseInLocation(queryTimeLayout, s, time.UTC)
		if err != nil {
			return nil, errors.New("rangeStart must have format " + queryTimeLayout)
		}
		filter.RangeStart = &t
	}
	if s := q.Get("rangeEnd"); s != "" {
		t, err := time.ParseInLocation(queryTimeLayout, s, time.UTC)
		if err != nil {
			return nil, errors.New("rangeEnd must have format " + queryTimeLayout)
		}
		filter.RangeEnd = &t
	}
	if s := q.Get("onlyAvailable"); s != "" {
		only, err := strconv.ParseBool(s)
		if err != nil {
			return nil, errors.New("onlyAvailable must be a boolean")
		}
		filter.OnlyAvailable = only
	}
	switch sort := q.Get("sort"); sort {
	case "":
	case string(domain.EventSortByDate), string(domain.EventSortByViews):
		filter.Sort = domain.EventSort(sort)
	default:
		return nil, errors.New("sort must be EVENT_DATE or VIEWS")
	}
	filter.From, filter.Size = helpers.ParseOffset(r)
	return filter, nil
}
