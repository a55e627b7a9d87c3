package service

import (
	"context"

	"github.com/tinydevcrm/eventbridge/internal/core"
	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	apperrors "github.com/tinydevcrm/eventbridge/internal/errors"
)

const defaultListLimit = 50

// ViewServiceOptions groups dependencies for ViewService.
type ViewServiceOptions struct {
	ViewRepo core.ViewRepository
}

// ViewService manages the materialized-view registry.
type ViewService struct {
	views core.ViewRepository
}

// NewViewService constructs a new ViewService.
func NewViewService(opts ViewServiceOptions) *ViewService {
	return &ViewService{views: opts.ViewRepo}
}

// Create validates and registers a materialized view. The backing relation is
// created by the registration query itself, so a failed CREATE MATERIALIZED
// VIEW surfaces as a validation or conflict error from the store.
func (s *ViewService) Create(ctx context.Context, req *model.CreateViewRequest) (*model.MaterializedView, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid view request")
	}
	return s.views.Create(ctx, req)
}

// GetByID returns a registered view scoped to its owner.
func (s *ViewService) GetByID(ctx context.Context, owner string, id int64) (*model.MaterializedView, error) {
	view, err := s.views.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A foreign owner's view is indistinguishable from a missing one.
	if view.Owner != owner {
		return nil, apperrors.NotFoundf("view %d not found", id)
	}
	return view, nil
}

// List returns a page of the owner's registered views.
func (s *ViewService) List(ctx context.Context, owner string, limit, offset int) ([]*model.MaterializedView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.views.List(ctx, owner, limit, offset)
}
