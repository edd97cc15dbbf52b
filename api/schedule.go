package api

import (
	"context"

	"github.com/yshengliao/antoree/routes"
)

// ScheduleService wraps the SCHEDULE routes
type ScheduleService struct {
	api *API
}

// Get returns a teacher's schedule
func (s *ScheduleService) Get(ctx context.Context, teacherID string) (*Schedule, error) {
	sc, err := do[Schedule](ctx, s.api, call{category: routes.SCHEDULE, action: routes.ActionGet, params: id("teacherId", teacherID)})
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// Update replaces a teacher's schedule
func (s *ScheduleService) Update(ctx context.Context, teacherID string, update ScheduleUpdate) (*Schedule, error) {
	sc, err := do[Schedule](ctx, s.api, call{
		category: routes.SCHEDULE,
		action:   routes.ActionUpdate,
		body:     update,
		params:   id("teacherId", teacherID),
		validate: true,
	})
	if err != nil {
		return nil, err
	}
	return &sc, nil
}
