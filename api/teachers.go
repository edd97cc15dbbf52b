package api

import (
	"context"
	"time"

	"github.com/yshengliao/antoree/routes"
)

// TeacherService wraps the TEACHERS routes
type TeacherService struct {
	api *API
}

// List returns a page of teachers
func (s *TeacherService) List(ctx context.Context, filters TeacherFilters) (*Page[Teacher], error) {
	return s.page(ctx, routes.ActionList, filters)
}

// Search returns teachers matching filters
func (s *TeacherService) Search(ctx context.Context, filters TeacherFilters) (*Page[Teacher], error) {
	return s.page(ctx, routes.ActionSearch, filters)
}

func (s *TeacherService) page(ctx context.Context, action string, filters TeacherFilters) (*Page[Teacher], error) {
	if err := s.api.validator.Validate(filters); err != nil {
		return nil, err
	}
	p, err := do[Page[Teacher]](ctx, s.api, call{category: routes.TEACHERS, action: action, query: filters.query(), cached: true})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns one teacher
func (s *TeacherService) Get(ctx context.Context, teacherID string) (*Teacher, error) {
	t, err := do[Teacher](ctx, s.api, call{category: routes.TEACHERS, action: routes.ActionGet, params: id("id", teacherID), cached: true})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Availability returns the open slots of a teacher between from and to;
// zero times are omitted.
func (s *TeacherService) Availability(ctx context.Context, teacherID string, from, to time.Time) (*Availability, error) {
	query := map[string]any{}
	if !from.IsZero() {
		query["from"] = from.UTC().Format(time.RFC3339)
	}
	if !to.IsZero() {
		query["to"] = to.UTC().Format(time.RFC3339)
	}
	a, err := do[Availability](ctx, s.api, call{
		category: routes.TEACHERS,
		action:   routes.ActionAvailability,
		params:   id("id", teacherID),
		query:    query,
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Reviews returns a page of a teacher's reviews
func (s *TeacherService) Reviews(ctx context.Context, teacherID string, page, limit int) (*Page[Review], error) {
	p, err := do[Page[Review]](ctx, s.api, call{
		category: routes.TEACHERS,
		action:   routes.ActionReviews,
		params:   id("id", teacherID),
		query:    pagination(page, limit),
		cached:   true,
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile edits a teacher profile
func (s *TeacherService) UpdateProfile(ctx context.Context, teacherID string, update TeacherProfileUpdate) (*Teacher, error) {
	t, err := do[Teacher](ctx, s.api, call{
		category:    routes.TEACHERS,
		action:      routes.ActionUpdateProfile,
		body:        update,
		params:      id("id", teacherID),
		validate:    true,
		invalidates: true,
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func pagination(page, limit int) map[string]any {
	q := map[string]any{}
	if page > 0 {
		q["page"] = page
	}
	if limit > 0 {
		q["limit"] = limit
	}
	return q
}
