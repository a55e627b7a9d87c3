package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
)

// RefreshLogRepo reads and updates the append-only completion log. Rows are
// normally inserted by the pg_cron notify job; Insert exists for the admin
// CLI and tests to push records through the same trigger path.
type RefreshLogRepo struct {
	DB *sql.DB
}

// NewRefreshLogRepo creates a new RefreshLogRepo instance with the given database connection.
func NewRefreshLogRepo(db *sql.DB) *RefreshLogRepo {
	return &RefreshLogRepo{DB: db}
}

const refreshColumns = `id, job_id, view_id, created_at, status`

// Insert appends a completion record. The insert trigger publishes the
// low-level notification as a side effect.
func (r *RefreshLogRepo) Insert(ctx context.Context, jobID, viewID int64) (*model.RefreshEvent, error) {
	var ev model.RefreshEvent
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO refresh_events (job_id, view_id, status)
		VALUES ($1, $2, $3)
		RETURNING `+refreshColumns,
		jobID, viewID, model.RefreshStatusNew,
	).Scan(&ev.ID, &ev.JobID, &ev.ViewID, &ev.CreatedAt, &ev.Status)
	if err != nil {
		return nil, classifyError(err, "refresh record not found")
	}
	return &ev, nil
}

// ListByStatus returns up to limit completion records in insertion order.
func (r *RefreshLogRepo) ListByStatus(
	ctx context.Context,
	status model.RefreshStatus,
	limit int,
) ([]*model.RefreshEvent, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+refreshColumns+`
		FROM refresh_events
		WHERE status = $1
		ORDER BY id
		LIMIT $2`,
		status, limit)
	if err != nil {
		return nil, fmt.Errorf("list refresh events: %w", err)
	}
	defer rows.Close()

	var events []*model.RefreshEvent
	for rows.Next() {
		var ev model.RefreshEvent
		if scanErr := rows.Scan(&ev.ID, &ev.JobID, &ev.ViewID, &ev.CreatedAt, &ev.Status); scanErr != nil {
			return nil, fmt.Errorf("scan refresh event: %w", scanErr)
		}
		events = append(events, &ev)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate refresh events: %w", rowsErr)
	}
	return events, nil
}

// MarkSentByJob flips every NEW record for the job to SENT. Called by the
// dispatcher after fan-out was attempted; SENT means handed over, not seen by
// a subscriber.
func (r *RefreshLogRepo) MarkSentByJob(ctx context.Context, jobID int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE refresh_events
		SET status = $2
		WHERE job_id = $1 AND status = $3`,
		jobID, model.RefreshStatusSent, model.RefreshStatusNew)
	if err != nil {
		return 0, fmt.Errorf("mark refresh events sent: %w", err)
	}
	return res.RowsAffected()
}

// NotifyPending re-publishes a notification for every NEW record on the
// given topic. Used by the admin replay command after the broker was down;
// the records keep their NEW status until a broker dispatches them.
func (r *RefreshLogRepo) NotifyPending(ctx context.Context, topic string) (int64, error) {
	// pg_notify takes the channel as a plain argument, so no identifier
	// quoting is needed, unlike LISTEN.
	res, err := r.DB.ExecContext(ctx, `
		SELECT pg_notify($1, json_build_object('job_id', job_id, 'view_id', view_id)::text)
		FROM refresh_events
		WHERE status = $2
		ORDER BY id`,
		topic, model.RefreshStatusNew)
	if err != nil {
		return 0, fmt.Errorf("notify pending refresh events: %w", err)
	}
	return res.RowsAffected()
}

// quoteIdent sanitizes an identifier for LISTEN/UNLISTEN statements, which
// cannot take bind parameters.
func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
