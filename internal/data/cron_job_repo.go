package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
)

// CronJobRepo provides database operations for the scheduled-job registry.
// The rows only reference pg_cron's scheduler-assigned identifiers; the
// schedule itself lives in cron.job and is managed through CronScheduler.
type CronJobRepo struct {
	DB *sql.DB
}

// NewCronJobRepo creates a new CronJobRepo instance with the given database connection.
func NewCronJobRepo(db *sql.DB) *CronJobRepo {
	return &CronJobRepo{DB: db}
}

const cronJobColumns = `id, owner, view_id, refresh_job_id, notify_job_id, crontab_def, created_at`

// Create persists a registry row for an already-scheduled job pair.
func (r *CronJobRepo) Create(ctx context.Context, job *model.CronJob) (*model.CronJob, error) {
	var out model.CronJob
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO cron_jobs (owner, view_id, refresh_job_id, notify_job_id, crontab_def)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+cronJobColumns,
		job.Owner, job.ViewID, job.RefreshJobID, job.NotifyJobID, job.CrontabDef,
	).Scan(&out.ID, &out.Owner, &out.ViewID, &out.RefreshJobID, &out.NotifyJobID, &out.CrontabDef, &out.CreatedAt)
	if err != nil {
		return nil, classifyError(err, "job not found")
	}
	return &out, nil
}

// GetOwnedByID retrieves a cron job only when it belongs to owner.
func (r *CronJobRepo) GetOwnedByID(ctx context.Context, owner string, id int64) (*model.CronJob, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, `
		SELECT `+cronJobColumns+` FROM cron_jobs WHERE id = $1 AND owner = $2`, id, owner))
}

// List returns a page of the owner's cron jobs, newest first.
func (r *CronJobRepo) List(ctx context.Context, owner string, limit, offset int) ([]*model.CronJob, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+cronJobColumns+`
		FROM cron_jobs
		WHERE owner = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		owner, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cron jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.CronJob
	for rows.Next() {
		var j model.CronJob
		if scanErr := rows.Scan(
			&j.ID, &j.Owner, &j.ViewID, &j.RefreshJobID, &j.NotifyJobID, &j.CrontabDef, &j.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan cron job: %w", scanErr)
		}
		jobs = append(jobs, &j)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate cron jobs: %w", rowsErr)
	}
	return jobs, nil
}

func (r *CronJobRepo) scanOne(row *sql.Row) (*model.CronJob, error) {
	var j model.CronJob
	err := row.Scan(&j.ID, &j.Owner, &j.ViewID, &j.RefreshJobID, &j.NotifyJobID, &j.CrontabDef, &j.CreatedAt)
	if err != nil {
		return nil, classifyError(err, "job not found")
	}
	return &j, nil
}

// SetNotifyJobID records the scheduler id of the completion-log job once it
// exists. The registry row is created before that job because the log insert
// must reference the registry id.
func (r *CronJobRepo) SetNotifyJobID(ctx context.Context, id, notifyJobID int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE cron_jobs SET notify_job_id = $2 WHERE id = $1`, id, notifyJobID)
	if err != nil {
		return classifyError(err, "job not found")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return classifyError(sql.ErrNoRows, "job not found")
	}
	return nil
}

// Delete removes a registry row, used to roll back a half-created job.
func (r *CronJobRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM cron_jobs WHERE id = $1`, id)
	if err != nil {
		return false, classifyError(err, "job not found")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
