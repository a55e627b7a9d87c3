package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// CronScheduler talks to pg_cron. The scheduler is treated as opaque: we hand
// it a crontab definition plus a command and record the integer identifier it
// assigns. Both arguments are passed as bind parameters; cron.schedule parses
// the crontab itself.
type CronScheduler struct {
	DB *sql.DB
}

// NewCronScheduler creates a CronScheduler on the shared pool.
func NewCronScheduler(db *sql.DB) *CronScheduler {
	return &CronScheduler{DB: db}
}

// Schedule registers command with pg_cron and returns the assigned job id.
func (s *CronScheduler) Schedule(ctx context.Context, crontabDef, command string) (int64, error) {
	var jobID int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT cron.schedule($1, $2)`, crontabDef, command,
	).Scan(&jobID)
	if err != nil {
		return 0, fmt.Errorf("cron.schedule: %w", err)
	}
	return jobID, nil
}

// Unschedule removes a pg_cron job. pg_cron raises for unknown ids; that case
// is swallowed so cleanup after partial failures stays idempotent.
func (s *CronScheduler) Unschedule(ctx context.Context, jobID int64) error {
	_, err := s.DB.ExecContext(ctx, `SELECT cron.unschedule($1)`, jobID)
	if err == nil || isUnknownCronJob(err) {
		return nil
	}
	return fmt.Errorf("cron.unschedule %d: %w", jobID, err)
}

// isUnknownCronJob reports whether err is pg_cron's "could not find valid
// entry for job" exception.
func isUnknownCronJob(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.RaiseException
}
