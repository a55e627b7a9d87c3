// Package httpx provides HTTP handlers and utilities for the eventbridge API.
package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	"github.com/tinydevcrm/eventbridge/internal/service"
)

// ViewHandlers provides HTTP handlers for the materialized-view registry.
type ViewHandlers struct {
	Svc *service.ViewService
}

// CreateView handles POST /views/create.
func (h *ViewHandlers) CreateView(w http.ResponseWriter, r *http.Request) {
	var req model.CreateViewRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Owner = OwnerFromContext(r.Context())

	view, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, view)
}

// GetView handles GET /views/{id}.
func (h *ViewHandlers) GetView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	view, err := h.Svc.GetByID(r.Context(), OwnerFromContext(r.Context()), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// ListViews handles GET /views.
func (h *ViewHandlers) ListViews(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 0)
	offset := parseIntQuery(r, "offset", 0)

	views, err := h.Svc.List(r.Context(), OwnerFromContext(r.Context()), limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if views == nil {
		views = []*model.MaterializedView{}
	}
	WriteJSON(w, http.StatusOK, views)
}

// pathID parses the {id} path segment, writing a 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_path",
			Err:     errors.New("id must be a positive integer"),
		})
		return 0, false
	}
	return id, true
}

func parseIntQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
