package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinydevcrm/eventbridge/internal/core"
	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	apperrors "github.com/tinydevcrm/eventbridge/internal/errors"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	ViewRepo  core.ViewRepository
	JobRepo   core.CronJobRepository
	Scheduler core.Scheduler
	Logger    *slog.Logger
}

// JobService schedules recurring view refreshes through pg_cron. One logical
// job is two scheduler entries: the REFRESH itself and the completion-log
// insert whose trigger notifies the broker.
type JobService struct {
	views     core.ViewRepository
	jobs      core.CronJobRepository
	scheduler core.Scheduler
	logger    *slog.Logger
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) *JobService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{
		views:     opts.ViewRepo,
		jobs:      opts.JobRepo,
		scheduler: opts.Scheduler,
		logger:    logger.With("component", "job_service"),
	}
}

// Create validates the request, schedules both pg_cron entries, and persists
// the registry row tying them together.
//
// The completion-log insert must reference the registry id (channels follow
// that id, not pg_cron's), so the sequence is: schedule refresh, create the
// registry row, schedule the log insert, record its scheduler id. Each
// failure path unwinds the scheduler state it already created.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.CronJob, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job request")
	}

	view, err := s.views.GetByName(ctx, req.Owner, req.ViewName)
	if err != nil {
		return nil, err
	}

	refreshJobID, err := s.scheduler.Schedule(ctx, req.CrontabDef, refreshCommand(view.ViewName))
	if err != nil {
		return nil, fmt.Errorf("schedule refresh: %w", err)
	}

	job, err := s.jobs.Create(ctx, &model.CronJob{
		Owner:        req.Owner,
		ViewID:       view.ID,
		RefreshJobID: refreshJobID,
		CrontabDef:   req.CrontabDef,
	})
	if err != nil {
		s.unwind(ctx, refreshJobID)
		return nil, err
	}

	notifyJobID, err := s.scheduler.Schedule(ctx, req.CrontabDef, notifyCommand(job.ID, view.ID))
	if err != nil {
		s.unwind(ctx, refreshJobID)
		s.deleteRegistryRow(ctx, job.ID)
		return nil, fmt.Errorf("schedule completion-log insert: %w", err)
	}

	if err := s.jobs.SetNotifyJobID(ctx, job.ID, notifyJobID); err != nil {
		s.unwind(ctx, refreshJobID)
		s.unwind(ctx, notifyJobID)
		s.deleteRegistryRow(ctx, job.ID)
		return nil, err
	}
	job.NotifyJobID = notifyJobID

	s.logger.InfoContext(ctx, "job scheduled",
		"job_id", job.ID,
		"view_id", view.ID,
		"refresh_job_id", refreshJobID,
		"notify_job_id", notifyJobID,
		"crontab_def", req.CrontabDef)
	return job, nil
}

// GetByID returns an owner's cron job.
func (s *JobService) GetByID(ctx context.Context, owner string, id int64) (*model.CronJob, error) {
	return s.jobs.GetOwnedByID(ctx, owner, id)
}

// List returns a page of the owner's cron jobs.
func (s *JobService) List(ctx context.Context, owner string, limit, offset int) ([]*model.CronJob, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.jobs.List(ctx, owner, limit, offset)
}

// unwind best-effort removes a scheduler entry during rollback. A failed
// unschedule leaves an orphan pg_cron entry; log it loudly for the operator.
func (s *JobService) unwind(ctx context.Context, schedulerJobID int64) {
	if err := s.scheduler.Unschedule(ctx, schedulerJobID); err != nil {
		s.logger.ErrorContext(ctx, "rollback unschedule failed; orphan pg_cron entry",
			"scheduler_job_id", schedulerJobID, "err", err)
	}
}

func (s *JobService) deleteRegistryRow(ctx context.Context, id int64) {
	if _, err := s.jobs.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "rollback registry delete failed", "job_id", id, "err", err)
	}
}

// refreshCommand builds the pg_cron command refreshing the backing relation.
// View names are validated identifiers; quoting is belt and braces.
func refreshCommand(viewName string) string {
	return fmt.Sprintf(`REFRESH MATERIALIZED VIEW %q`, viewName)
}

// notifyCommand builds the pg_cron command appending to the completion log.
// The insert trigger fires pg_notify, so this single statement is the whole
// notification pipeline's upstream end. jobID is the registry id, which is
// what channels subscribe against.
func notifyCommand(jobID, viewID int64) string {
	return fmt.Sprintf(
		`INSERT INTO refresh_events (job_id, view_id, status) VALUES (%d, %d, 'NEW')`,
		jobID, viewID)
}
