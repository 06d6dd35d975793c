package controllers

import (
	"log/slog"
	"net/http"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// JoinEventRequest is the request body for POST /users/{userID}/requests.
type JoinEventRequest struct {
	EventID string `json:"event_id"`
}

// Validate implements Validator.
func (j JoinEventRequest) Validate() []string {
	if j.EventID == "" {
		return []string{"event_id is required"}
	}
	return nil
}

// ChangeRequestStatusRequest is the request body for
// PATCH /users/{userID}/events/{eventID}/requests.
type ChangeRequestStatusRequest struct {
	RequestIDs []string `json:"request_ids"`
	Status     string   `json:"status"`
}

// Validate implements Validator.
func (c ChangeRequestStatusRequest) Validate() []string {
	var errs []string
	if len(c.RequestIDs) == 0 {
		errs = append(errs, "request_ids is required")
	}
	if c.Status == "" {
		errs = append(errs, "status is required")
	}
	return errs
}

// RequestSuccessResponse is the success envelope for single-request endpoints.
type RequestSuccessResponse struct {
	Data  *domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// RequestListSuccessResponse is the success envelope for request list endpoints.
type RequestListSuccessResponse struct {
	Data  []*domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError              `json:"error"`
}

// StatusUpdateSuccessResponse is the success envelope for bulk status changes.
type StatusUpdateSuccessResponse struct {
	Data  *domain.StatusUpdateResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

type RequestController struct {
	Logger  *slog.Logger
	Service domain.AdmissionService
}

func NewRequestController(logger *slog.Logger, svc domain.AdmissionService) *RequestController {
	return &RequestController{Logger: logger, Service: svc}
}

// Join godoc
// @Summary Request participation in an event
// @Description Files a participation request. Confirmed immediately when the event has no limit or moderation is off, pending otherwise. Duplicate requests, own events, unpublished events, and full events all conflict.
// @Tags requests
// @Accept json
// @Produce json
// @Param userID path string true "Requester ID"
// @Param body body JoinEventRequest true "Event to join"
// @Success 201 {object} controllers.RequestSuccessResponse "data contains the created request"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/requests [post]
func (c *RequestController) Join(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}
	var req JoinEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	request, err := c.Service.Join(r.Context(), userID, req.EventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, request)
}

// Cancel godoc
// @Summary Cancel own participation request
// @Description Sets the caller's request to CANCELED regardless of its prior status. Canceling a confirmed request frees a capacity slot.
// @Tags requests
// @Produce json
// @Param userID path string true "Requester ID"
// @Param requestID path string true "Request ID"
// @Success 200 {object} controllers.RequestSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/requests/{requestID}/cancel [patch]
func (c *RequestController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	requestID := r.PathValue("requestID")
	if userID == "" || requestID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID or requestID")
		return
	}
	request, err := c.Service.Cancel(r.Context(), userID, requestID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, request)
}

// ListUserRequests godoc
// @Summary List the caller's participation requests
// @Tags requests
// @Produce json
// @Param userID path string true "Requester ID"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/requests [get]
func (c *RequestController) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}
	requests, err := c.Service.ListUserRequests(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if requests == nil {
		requests = []*domain.ParticipationRequest{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, requests)
}

// ListEventRequests godoc
// @Summary List requests for the initiator's event
// @Description Returns the event's participation requests to its initiator. Non-initiators get 404.
// @Tags requests
// @Produce json
// @Param userID path string true "Initiator ID"
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events/{eventID}/requests [get]
func (c *RequestController) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if userID == "" || eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID or eventID")
		return
	}
	requests, err := c.Service.ListEventRequests(r.Context(), userID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if requests == nil {
		requests = []*domain.ParticipationRequest{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, requests)
}

// ChangeStatus godoc
// @Summary Confirm or reject pending requests in bulk
// @Description All-or-nothing over the batch: any member not currently PENDING aborts the call. Confirmation stops at the participant limit, rejects the overflow, and cascades rejection to every other pending request once the limit is reached.
// @Tags requests
// @Accept json
// @Produce json
// @Param userID path string true "Initiator ID"
// @Param eventID path string true "Event ID"
// @Param body body ChangeRequestStatusRequest true "Request IDs and target status (CONFIRMED or REJECTED)"
// @Success 200 {object} controllers.StatusUpdateSuccessResponse "data partitions confirmed and rejected requests"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events/{eventID}/requests [patch]
func (c *RequestController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if userID == "" || eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID or eventID")
		return
	}
	var req ChangeRequestStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.ChangeStatus(r.Context(), userID, eventID, req.RequestIDs, domain.RequestStatus(req.Status))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
