package api

import (
	"context"

	"github.com/yshengliao/antoree/routes"
)

// BookingService wraps the BOOKINGS routes
type BookingService struct {
	api *API
}

// CreateTrial books a trial lesson
func (s *BookingService) CreateTrial(ctx context.Context, req TrialBookingRequest) (*Booking, error) {
	return s.one(ctx, call{category: routes.BOOKINGS, action: routes.ActionCreateTrial, body: req, validate: true})
}

// Create books a regular lesson
func (s *BookingService) Create(ctx context.Context, req BookingRequest) (*Booking, error) {
	return s.one(ctx, call{category: routes.BOOKINGS, action: routes.ActionCreate, body: req, validate: true})
}

// Get returns one booking
func (s *BookingService) Get(ctx context.Context, bookingID string) (*Booking, error) {
	return s.one(ctx, call{category: routes.BOOKINGS, action: routes.ActionGet, params: id("id", bookingID)})
}

// List returns the caller's bookings, optionally filtered by status
func (s *BookingService) List(ctx context.Context, status string) ([]Booking, error) {
	var query map[string]any
	if status != "" {
		query = map[string]any{"status": status}
	}
	return do[[]Booking](ctx, s.api, call{category: routes.BOOKINGS, action: routes.ActionList, query: query})
}

// Cancel cancels a booking
func (s *BookingService) Cancel(ctx context.Context, bookingID string) (*Booking, error) {
	return s.one(ctx, call{category: routes.BOOKINGS, action: routes.ActionCancel, params: id("id", bookingID)})
}

// Reschedule moves a booking to a new start time
func (s *BookingService) Reschedule(ctx context.Context, bookingID string, req RescheduleRequest) (*Booking, error) {
	return s.one(ctx, call{
		category: routes.BOOKINGS,
		action:   routes.ActionReschedule,
		body:     req,
		params:   id("id", bookingID),
		validate: true,
	})
}

func (s *BookingService) one(ctx context.Context, c call) (*Booking, error) {
	b, err := do[Booking](ctx, s.api, c)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
