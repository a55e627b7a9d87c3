// Package model defines the core data types shared across the eventbridge service.
package model

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

const maxViewNameLen = 255

// MaterializedView is a registered recomputation target: a named derived
// dataset whose contents pg_cron periodically refreshes.
type MaterializedView struct {
	ID        int64     `json:"id"         db:"id"`
	Owner     string    `json:"owner"      db:"owner"`
	ViewName  string    `json:"view_name"  db:"view_name"`
	Query     string    `json:"sql_query"  db:"sql_query"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateViewRequest represents parameters to register a materialized view.
type CreateViewRequest struct {
	Owner    string `json:"-"`
	ViewName string `json:"view_name"`
	Query    string `json:"sql_query"`
}

// Validate checks the request for structural problems before it reaches the
// data layer. Uniqueness of (owner, view_name) is enforced by the database.
func (r *CreateViewRequest) Validate() error {
	if strings.TrimSpace(r.Owner) == "" {
		return errors.New("owner is required")
	}
	if err := ValidateViewName(r.ViewName); err != nil {
		return err
	}
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("sql_query is required")
	}
	return nil
}

// ValidateViewName rejects names that cannot be a safe SQL identifier. The
// name ends up inside REFRESH MATERIALIZED VIEW statements run by pg_cron, so
// it is restricted rather than quoted at call sites.
func ValidateViewName(name string) error {
	if name == "" {
		return errors.New("view_name is required")
	}
	if len(name) > maxViewNameLen {
		return errors.New("view_name too long")
	}
	for i, r := range name {
		if r == '_' || unicode.IsLower(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return errors.New("view_name must match [a-z_][a-z0-9_]*")
	}
	return nil
}
