package api

import (
	"context"

	"github.com/yshengliao/antoree/routes"
)

// PaymentService wraps the PAYMENTS routes
type PaymentService struct {
	api *API
}

// CreateCoursePayment starts a course checkout
func (s *PaymentService) CreateCoursePayment(ctx context.Context, req CoursePaymentRequest) (*Payment, error) {
	return s.one(ctx, call{category: routes.PAYMENTS, action: routes.ActionCreateCoursePayment, body: req, validate: true})
}

// CreateTrialPayment starts a trial lesson checkout
func (s *PaymentService) CreateTrialPayment(ctx context.Context, req TrialPaymentRequest) (*Payment, error) {
	return s.one(ctx, call{category: routes.PAYMENTS, action: routes.ActionCreateTrialPayment, body: req, validate: true})
}

// Status returns the state of a payment
func (s *PaymentService) Status(ctx context.Context, paymentID string) (*Payment, error) {
	return s.one(ctx, call{category: routes.PAYMENTS, action: routes.ActionStatus, params: id("id", paymentID)})
}

// Confirm confirms a payment after the provider redirect
func (s *PaymentService) Confirm(ctx context.Context, paymentID string) (*Payment, error) {
	return s.one(ctx, call{category: routes.PAYMENTS, action: routes.ActionConfirm, params: id("id", paymentID)})
}

func (s *PaymentService) one(ctx context.Context, c call) (*Payment, error) {
	p, err := do[Payment](ctx, s.api, c)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
