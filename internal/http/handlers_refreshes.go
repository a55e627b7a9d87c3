package httpx

import (
	"net/http"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	"github.com/tinydevcrm/eventbridge/internal/service"
)

// RefreshHandlers provides read access to the completion log.
type RefreshHandlers struct {
	Svc *service.RefreshLogService
}

// ListRefreshes handles GET /refreshes.
func (h *RefreshHandlers) ListRefreshes(w http.ResponseWriter, r *http.Request) {
	status := model.RefreshStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = model.RefreshStatusNew
	}
	limit := parseIntQuery(r, "limit", 0)

	records, err := h.Svc.ListByStatus(r.Context(), status, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if records == nil {
		records = []*model.RefreshEvent{}
	}
	WriteJSON(w, http.StatusOK, records)
}
