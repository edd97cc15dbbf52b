package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshengliao/antoree/middleware"
	apierrors "github.com/yshengliao/antoree/pkg/errors"
	"github.com/yshengliao/antoree/routes"
)

type staticTokens struct {
	token string
}

func (s staticTokens) AuthToken() (string, bool) {
	return s.token, s.token != ""
}

func TestAuth(t *testing.T) {
	protected := routes.RouteConfig{Method: routes.GET, Path: "/auth/me", RequiresAuth: true}
	public := routes.RouteConfig{Method: routes.GET, Path: "/teachers"}

	tests := []struct {
		name       string
		route      routes.RouteConfig
		token      string
		headers    map[string]string
		wantErr    error
		wantHeader string
	}{
		{"protected without token", protected, "", nil, apierrors.ErrAuthRequired, ""},
		{"protected with token", protected, "abc", nil, nil, "Bearer abc"},
		{"public without token", public, "", nil, nil, ""},
		{"public with token", public, "abc", nil, nil, "Bearer abc"},
		{"caller header kept", protected, "abc", map[string]string{"authorization": "Bearer mine"}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := middleware.Auth(staticTokens{token: tt.token})
			mc := middleware.NewContext(tt.route, nil, &routes.RequestOptions{Headers: tt.headers})

			out, err := mw(context.Background(), mc)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Authentication required", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, out.Headers["Authorization"])
		})
	}
}
