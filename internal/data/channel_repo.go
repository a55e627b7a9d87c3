package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
)

// ChannelRepo provides database operations for the channel registry.
type ChannelRepo struct {
	DB *sql.DB
}

// NewChannelRepo creates a new ChannelRepo instance with the given database connection.
func NewChannelRepo(db *sql.DB) *ChannelRepo {
	return &ChannelRepo{DB: db}
}

const channelColumns = `id, public_identifier, owner, job_id, status, created_at, updated_at`

// Create allocates a fresh public identifier and persists the channel row.
// New channels start ACTIVE.
func (r *ChannelRepo) Create(ctx context.Context, req *model.CreateChannelRequest) (*model.Channel, error) {
	publicID := uuid.New()

	var ch model.Channel
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO channels (public_identifier, owner, job_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+channelColumns,
		publicID, req.Owner, req.JobID, model.ChannelStatusActive,
	).Scan(&ch.ID, &ch.PublicID, &ch.Owner, &ch.JobID, &ch.Status, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return nil, classifyError(err, "channel not found")
	}
	return &ch, nil
}

// GetByPublicID retrieves a channel by its public identifier.
func (r *ChannelRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Channel, error) {
	var ch model.Channel
	err := r.DB.QueryRowContext(ctx, `
		SELECT `+channelColumns+` FROM channels WHERE public_identifier = $1`, publicID,
	).Scan(&ch.ID, &ch.PublicID, &ch.Owner, &ch.JobID, &ch.Status, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return nil, classifyError(err, "channel not found")
	}
	return &ch, nil
}

// ListActiveByJobID returns every non-CLOSED channel following the cron job.
// The dispatcher fans one refresh notification out to each of these.
func (r *ChannelRepo) ListActiveByJobID(ctx context.Context, jobID int64) ([]*model.Channel, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+channelColumns+`
		FROM channels
		WHERE job_id = $1 AND status <> $2
		ORDER BY id`,
		jobID, model.ChannelStatusClosed)
	if err != nil {
		return nil, fmt.Errorf("list channels by job: %w", err)
	}
	defer rows.Close()

	var channels []*model.Channel
	for rows.Next() {
		var ch model.Channel
		if scanErr := rows.Scan(
			&ch.ID, &ch.PublicID, &ch.Owner, &ch.JobID, &ch.Status, &ch.CreatedAt, &ch.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan channel: %w", scanErr)
		}
		channels = append(channels, &ch)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate channels: %w", rowsErr)
	}
	return channels, nil
}

// SetStatus transitions a channel's lifecycle state. CLOSED is terminal:
// rows already CLOSED never match, so re-close and re-open both report no
// change rather than resurrecting the channel.
func (r *ChannelRepo) SetStatus(
	ctx context.Context,
	publicID uuid.UUID,
	status model.ChannelStatus,
) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE channels
		SET status = $2, updated_at = now()
		WHERE public_identifier = $1 AND status <> $3 AND status <> $2`,
		publicID, status, model.ChannelStatusClosed)
	if err != nil {
		return false, classifyError(err, "channel not found")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
