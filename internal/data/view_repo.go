package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tinydevcrm/eventbridge/internal/data/pgxutil"
	"github.com/tinydevcrm/eventbridge/internal/domain/model"
)

// ViewRepo provides database operations for the materialized-view registry.
type ViewRepo struct {
	DB *sql.DB
}

// NewViewRepo creates a new ViewRepo instance with the given database connection.
func NewViewRepo(db *sql.DB) *ViewRepo {
	return &ViewRepo{DB: db}
}

const viewColumns = `id, owner, view_name, sql_query, created_at`

// Create builds the backing relation and registers it in one transaction, so
// a rejected query leaves no registry row behind. The view name was validated
// upstream but is still quoted as an identifier. Uniqueness of
// (owner, view_name) is enforced by the database and surfaces as a conflict
// error.
func (r *ViewRepo) Create(ctx context.Context, req *model.CreateViewRequest) (*model.MaterializedView, error) {
	var v model.MaterializedView
	err := pgxutil.WithSQLTx(ctx, r.DB, func(tx *sql.Tx) error {
		ddl := fmt.Sprintf("CREATE MATERIALIZED VIEW %s AS %s WITH DATA",
			quoteIdent(req.ViewName), req.Query)
		if _, execErr := tx.ExecContext(ctx, ddl); execErr != nil {
			return execErr
		}
		return tx.QueryRowContext(ctx, `
			INSERT INTO materialized_views (owner, view_name, sql_query)
			VALUES ($1, $2, $3)
			RETURNING `+viewColumns,
			req.Owner, req.ViewName, req.Query,
		).Scan(&v.ID, &v.Owner, &v.ViewName, &v.Query, &v.CreatedAt)
	})
	if err != nil {
		return nil, classifyError(err, "view not found")
	}
	return &v, nil
}

// GetByID retrieves a view by its registry id.
func (r *ViewRepo) GetByID(ctx context.Context, id int64) (*model.MaterializedView, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, `
		SELECT `+viewColumns+` FROM materialized_views WHERE id = $1`, id))
}

// GetByName retrieves a view by owner and name.
func (r *ViewRepo) GetByName(ctx context.Context, owner, viewName string) (*model.MaterializedView, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, `
		SELECT `+viewColumns+` FROM materialized_views WHERE owner = $1 AND view_name = $2`,
		owner, viewName))
}

// List returns a page of the owner's registered views, newest first.
func (r *ViewRepo) List(ctx context.Context, owner string, limit, offset int) ([]*model.MaterializedView, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+viewColumns+`
		FROM materialized_views
		WHERE owner = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		owner, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	defer rows.Close()

	var views []*model.MaterializedView
	for rows.Next() {
		var v model.MaterializedView
		if scanErr := rows.Scan(&v.ID, &v.Owner, &v.ViewName, &v.Query, &v.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("scan view: %w", scanErr)
		}
		views = append(views, &v)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate views: %w", rowsErr)
	}
	return views, nil
}

func (r *ViewRepo) scanOne(row *sql.Row) (*model.MaterializedView, error) {
	var v model.MaterializedView
	if err := row.Scan(&v.ID, &v.Owner, &v.ViewName, &v.Query, &v.CreatedAt); err != nil {
		return nil, classifyError(err, "view not found")
	}
	return &v, nil
}
