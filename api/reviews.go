package api

import (
	"context"

	"github.com/yshengliao/antoree/routes"
)

// ReviewService wraps the REVIEWS routes
type ReviewService struct {
	api *API
}

// Create posts a review
func (s *ReviewService) Create(ctx context.Context, req ReviewRequest) (*Review, error) {
	r, err := do[Review](ctx, s.api, call{category: routes.REVIEWS, action: routes.ActionCreate, body: req, validate: true, invalidates: true})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns a page of reviews for a teacher
func (s *ReviewService) List(ctx context.Context, teacherID string, page, limit int) (*Page[Review], error) {
	p, err := do[Page[Review]](ctx, s.api, call{
		category: routes.REVIEWS,
		action:   routes.ActionList,
		params:   id("teacherId", teacherID),
		query:    pagination(page, limit),
		cached:   true,
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
