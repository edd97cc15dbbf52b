package middleware

import (
	"context"

	apierrors "github.com/yshengliao/antoree/pkg/errors"
)

// TokenSource provides the current bearer token
type TokenSource interface {
	AuthToken() (string, bool)
}

// Auth injects "Authorization: Bearer <token>" and rejects protected
// routes when no token is set. An Authorization header supplied by the
// caller is left untouched.
func Auth(tokens TokenSource) Func {
	return func(_ context.Context, mc *Context) (*Context, error) {
		token, ok := tokens.AuthToken()
		if !ok || token == "" {
			if mc.Route.RequiresAuth {
				return nil, apierrors.ErrAuthRequired
			}
			return mc, nil
		}

		if !hasHeader(mc.Headers, "Authorization") {
			mc.Headers["Authorization"] = "Bearer " + token
		}
		return mc, nil
	}
}
