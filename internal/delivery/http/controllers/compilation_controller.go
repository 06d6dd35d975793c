package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// NewCompilationRequest is the request body for POST /admin/compilations.
type NewCompilationRequest struct {
	Title    string   `json:"title"`
	Pinned   bool     `json:"pinned"`
	EventIDs []string `json:"event_ids"`
}

// Validate implements Validator.
func (n NewCompilationRequest) Validate() []string {
	if strings.TrimSpace(n.Title) == "" {
		return []string{"title is required"}
	}
	return nil
}

// UpdateCompilationRequest is the request body for PATCH /admin/compilations/{compID}.
// All fields are optional; a nil event_ids leaves the event set unchanged.
type UpdateCompilationRequest struct {
	Title    *string  `json:"title"`
	Pinned   *bool    `json:"pinned"`
	EventIDs []string `json:"event_ids"`
}

// Validate implements Validator.
func (u UpdateCompilationRequest) Validate() []string {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return []string{"title cannot be empty"}
	}
	return nil
}

// CompilationSuccessResponse is the success envelope for single-compilation endpoints.
type CompilationSuccessResponse struct {
	Data  *domain.Compilation `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// CompilationListSuccessResponse is the success envelope for GET /compilations.
type CompilationListSuccessResponse struct {
	Data  []*domain.Compilation `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type CompilationController struct {
	Logger  *slog.Logger
	Service domain.CompilationService
}

func NewCompilationController(logger *slog.Logger, svc domain.CompilationService) *CompilationController {
	return &CompilationController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Create a compilation
// @Tags admin
// @Accept json
// @Produce json
// @Param body body NewCompilationRequest true "Compilation data"
// @Success 201 {object} controllers.CompilationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown event id)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/compilations [post]
func (c *CompilationController) Create(w http.ResponseWriter, r *http.Request) {
	var req NewCompilationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comp, err := c.Service.Create(r.Context(), strings.TrimSpace(req.Title), req.Pinned, req.EventIDs)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comp)
}

// Update godoc
// @Summary Update a compilation
// @Tags admin
// @Accept json
// @Produce json
// @Param compID path string true "Compilation ID"
// @Param body body UpdateCompilationRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.CompilationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/compilations/{compID} [patch]
func (c *CompilationController) Update(w http.ResponseWriter, r *http.Request) {
	compID := r.PathValue("compID")
	if compID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing compID")
		return
	}
	var req UpdateCompilationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comp, err := c.Service.Update(r.Context(), compID, &domain.CompilationPatch{
		Title:    req.Title,
		Pinned:   req.Pinned,
		EventIDs: req.EventIDs,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comp)
}

// GetByID godoc
// @Summary Get a compilation
// @Tags public
// @Produce json
// @Param compID path string true "Compilation ID"
// @Success 200 {object} controllers.CompilationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /compilations/{compID} [get]
func (c *CompilationController) GetByID(w http.ResponseWriter, r *http.Request) {
	compID := r.PathValue("compID")
	if compID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing compID")
		return
	}
	comp, err := c.Service.GetByID(r.Context(), compID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comp)
}

// List godoc
// @Summary List compilations
// @Tags public
// @Produce json
// @Param pinned query bool false "Pinned filter"
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.CompilationListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /compilations [get]
func (c *CompilationController) List(w http.ResponseWriter, r *http.Request) {
	var pinned *bool
	if s := r.URL.Query().Get("pinned"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "pinned must be a boolean")
			return
		}
		pinned = &v
	}
	from, size := helpers.ParseOffset(r)
	comps, err := c.Service.List(r.Context(), pinned, from, size)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if comps == nil {
		comps = []*domain.Compilation{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comps)
}

// Delete godoc
// @Summary Delete a compilation
// @Tags admin
// @Produce json
// @Param compID path string true "Compilation ID"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/compilations/{compID} [delete]
func (c *CompilationController) Delete(w http.ResponseWriter, r *http.Request) {
	compID := r.PathValue("compID")
	if compID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing compID")
		return
	}
	if err := c.Service.Delete(r.Context(), compID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteStatusResponse{Status: "deleted"})
}
