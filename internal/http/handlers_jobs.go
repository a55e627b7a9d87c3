package httpx

import (
	"net/http"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	"github.com/tinydevcrm/eventbridge/internal/service"
)

// JobHandlers provides HTTP handlers for the cron-job registry.
type JobHandlers struct {
	Svc *service.JobService
}

// CreateJob handles POST /jobs/create.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Owner = OwnerFromContext(r.Context())

	job, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, job)
}

// GetJob handles GET /jobs/{id}.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	job, err := h.Svc.GetByID(r.Context(), OwnerFromContext(r.Context()), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /jobs.
func (h *JobHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 0)
	offset := parseIntQuery(r, "offset", 0)

	jobs, err := h.Svc.List(r.Context(), OwnerFromContext(r.Context()), limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []*model.CronJob{}
	}
	WriteJSON(w, http.StatusOK, jobs)
}
