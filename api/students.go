package api

import (
	"context"

	"github.com/yshengliao/antoree/routes"
)

// StudentService wraps the STUDENTS routes
type StudentService struct {
	api *API
}

// Get returns a student profile
func (s *StudentService) Get(ctx context.Context, studentID string) (*Student, error) {
	st, err := do[Student](ctx, s.api, call{category: routes.STUDENTS, action: routes.ActionGet, params: id("id", studentID)})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateProfile edits a student profile
func (s *StudentService) UpdateProfile(ctx context.Context, studentID string, update StudentProfileUpdate) (*Student, error) {
	st, err := do[Student](ctx, s.api, call{
		category: routes.STUDENTS,
		action:   routes.ActionUpdateProfile,
		body:     update,
		params:   id("id", studentID),
		validate: true,
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Bookings returns the bookings of a student
func (s *StudentService) Bookings(ctx context.Context, studentID string) ([]Booking, error) {
	return do[[]Booking](ctx, s.api, call{category: routes.STUDENTS, action: routes.ActionBookings, params: id("id", studentID)})
}
