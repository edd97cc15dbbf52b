package api

import (
	"context"

	"github.com/yshengliao/antoree/routes"
)

// ContactService wraps the CONTACT routes
type ContactService struct {
	api *API
}

// Submit sends the contact form
func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (*Message, error) {
	m, err := do[Message](ctx, s.api, call{category: routes.CONTACT, action: routes.ActionSubmit, body: req, validate: true})
	if err != nil {
		return nil, err
	}
	return &m, nil
}
