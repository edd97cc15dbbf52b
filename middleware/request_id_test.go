package middleware_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshengliao/antoree/middleware"
	"github.com/yshengliao/antoree/routes"
)

func TestRequestID(t *testing.T) {
	mw := middleware.RequestID()

	mc, err := mw(context.Background(), middleware.NewContext(routes.RouteConfig{}, nil, nil))
	require.NoError(t, err)
	_, err = uuid.Parse(mc.Headers[middleware.HeaderXRequestID])
	assert.NoError(t, err)

	existing := &routes.RequestOptions{Headers: map[string]string{"x-request-id": "given"}}
	mc, err = mw(context.Background(), middleware.NewContext(routes.RouteConfig{}, nil, existing))
	require.NoError(t, err)
	assert.Equal(t, "given", mc.Headers["x-request-id"])
	_, added := mc.Headers[middleware.HeaderXRequestID]
	assert.False(t, added)
}

func TestRequestIDWithConfig(t *testing.T) {
	mw := middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator:    func() string { return "fixed" },
		TargetHeader: "X-Correlation-ID",
	})

	mc, err := mw(context.Background(), middleware.NewContext(routes.RouteConfig{}, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "fixed", mc.Headers["X-Correlation-ID"])
}
