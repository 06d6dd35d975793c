package controllers

import (
	"log/slog"
	"net/http"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// RateEventRequest is the request body for PUT /users/{userID}/ratings/{eventID}.
type RateEventRequest struct {
	IsLike *bool `json:"is_like"`
}

// Validate implements Validator.
func (r RateEventRequest) Validate() []string {
	if r.IsLike == nil {
		return []string{"is_like is required"}
	}
	return nil
}

// UserRatingResponse is the data payload for GET /users/{userID}/ratings/{eventID}.
// IsLike is nil when the user has not voted.
type UserRatingResponse struct {
	IsLike *bool `json:"is_like"`
}

// RatingSummarySuccessResponse is the success envelope for GET /events/{eventID}/rating.
type RatingSummarySuccessResponse struct {
	Data  *domain.RatingSummary `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// UserRatingSuccessResponse is the success envelope for GET /users/{userID}/ratings/{eventID}.
type UserRatingSuccessResponse struct {
	Data  UserRatingResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// RatingStatusResponse is the data payload for vote writes and deletes.
type RatingStatusResponse struct {
	Status string `json:"status"`
}

type RatingController struct {
	Logger  *slog.Logger
	Service domain.RatingService
}

func NewRatingController(logger *slog.Logger, svc domain.RatingService) *RatingController {
	return &RatingController{Logger: logger, Service: svc}
}

// Rate godoc
// @Summary Like or dislike an event
// @Description Records or overwrites the caller's vote. Only confirmed participants of a published event may vote, never for their own event.
// @Tags ratings
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param eventID path string true "Event ID"
// @Param body body RateEventRequest true "Vote"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not a confirmed participant, own event, or unpublished)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/ratings/{eventID} [put]
func (c *RatingController) Rate(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if userID == "" || eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID or eventID")
		return
	}
	var req RateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.Rate(r.Context(), userID, eventID, *req.IsLike); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RatingStatusResponse{Status: "rated"})
}

// DeleteRating godoc
// @Summary Withdraw a vote
// @Tags ratings
// @Produce json
// @Param userID path string true "User ID"
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no vote to withdraw)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/ratings/{eventID} [delete]
func (c *RatingController) DeleteRating(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if userID == "" || eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID or eventID")
		return
	}
	if err := c.Service.DeleteRating(r.Context(), userID, eventID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RatingStatusResponse{Status: "deleted"})
}

// GetUserRating godoc
// @Summary Get the caller's vote on an event
// @Description Returns is_like true/false, or null when the user has not voted.
// @Tags ratings
// @Produce json
// @Param userID path string true "User ID"
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.UserRatingSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/ratings/{eventID} [get]
func (c *RatingController) GetUserRating(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	eventID := r.PathValue("eventID")
	if userID == "" || eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID or eventID")
		return
	}
	isLike, err := c.Service.GetUserRating(r.Context(), userID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UserRatingResponse{IsLike: isLike})
}

// GetEventRating godoc
// @Summary Get an event's aggregated rating
// @Description Returns likes, dislikes, total, and score (integer percentage of likes, null with no votes).
// @Tags public
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.RatingSummarySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rating [get]
func (c *RatingController) GetEventRating(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	summary, err := c.Service.GetEventRating(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}
