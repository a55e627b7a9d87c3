package model

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// CronJob associates a materialized view with its pg_cron schedule. Two
// scheduler-assigned identifiers back one logical job: RefreshJobID drives
// the REFRESH itself and NotifyJobID drives the completion-log insert that
// triggers downstream notification.
type CronJob struct {
	ID           int64     `json:"id"             db:"id"`
	Owner        string    `json:"owner"          db:"owner"`
	ViewID       int64     `json:"view_id"        db:"view_id"`
	RefreshJobID int64     `json:"refresh_job_id" db:"refresh_job_id"`
	NotifyJobID  int64     `json:"notify_job_id"  db:"notify_job_id"`
	CrontabDef   string    `json:"crontab_def"    db:"crontab_def"`
	CreatedAt    time.Time `json:"created_at"     db:"created_at"`
}

// CreateJobRequest represents parameters to schedule a recurring view refresh.
type CreateJobRequest struct {
	Owner      string `json:"-"`
	ViewName   string `json:"view_name"`
	CrontabDef string `json:"crontab_def"`
}

// Validate checks the request before any pg_cron state is created.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.Owner) == "" {
		return errors.New("owner is required")
	}
	if err := ValidateViewName(r.ViewName); err != nil {
		return err
	}
	return ValidateCrontab(r.CrontabDef)
}

// ValidateCrontab performs field-count and range validation of a classic
// five-field crontab expression. The authoritative parse happens inside
// pg_cron; this check only rejects obvious garbage before a round trip.
func ValidateCrontab(def string) error {
	fields := strings.Fields(def)
	if len(fields) != 5 {
		return errors.New("crontab_def must have exactly 5 fields")
	}

	bounds := [5][2]int{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 7}}
	for i, field := range fields {
		if !validCronField(field, bounds[i][0], bounds[i][1]) {
			return errors.New("crontab_def field " + strconv.Itoa(i+1) + " is invalid")
		}
	}
	return nil
}

// validCronField accepts "*", "*/n", single values, ranges, and lists within
// [lo, hi]. Names (mon, jan) are left to pg_cron.
func validCronField(field string, lo, hi int) bool {
	if field == "*" {
		return true
	}
	if rest, ok := strings.CutPrefix(field, "*/"); ok {
		n, err := strconv.Atoi(rest)
		return err == nil && n > 0
	}
	for _, part := range strings.Split(field, ",") {
		first, second, isRange := strings.Cut(part, "-")
		if !validCronValue(first, lo, hi) {
			return false
		}
		if isRange && !validCronValue(second, lo, hi) {
			return false
		}
	}
	return true
}

func validCronValue(s string, lo, hi int) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= lo && n <= hi
}
