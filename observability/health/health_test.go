package health_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshengliao/antoree/internal/testutil/backend"
	"github.com/yshengliao/antoree/observability/health"
	"github.com/yshengliao/antoree/pkg/httpclient"
	"github.com/yshengliao/antoree/pkg/storage"
)

type failingStore struct {
	storage.Store
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestEndpointCheck(t *testing.T) {
	b := backend.New(t)
	client := httpclient.New(httpclient.Config{BaseURL: b.BaseURL()})
	ctx := context.Background()

	res := health.EndpointCheck(client, "/health", 0)(ctx)
	assert.Equal(t, health.StatusHealthy, res.Status)
	assert.Equal(t, 200, res.Details["status"])

	res = health.EndpointCheck(client, "/broken", 0)(ctx)
	assert.Equal(t, health.StatusUnhealthy, res.Status)
	assert.Equal(t, 502, res.Details["status"])

	b.Delay("/health", 30*time.Millisecond)
	res = health.EndpointCheck(client, "/health", time.Millisecond)(ctx)
	assert.Equal(t, health.StatusDegraded, res.Status)
}

func TestStoreCheck(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	res := health.StoreCheck(store)(ctx)
	assert.Equal(t, health.StatusHealthy, res.Status)
	assert.Zero(t, store.Len())

	res = health.StoreCheck(failingStore{store})(ctx)
	assert.Equal(t, health.StatusUnhealthy, res.Status)
	assert.Equal(t, "disk full", res.Details["error"])
}

func TestChecker(t *testing.T) {
	c := health.NewChecker(20 * time.Millisecond)
	c.Register("ok", func(context.Context) health.Result {
		return health.Result{Status: health.StatusHealthy}
	})
	c.Register("slow", func(ctx context.Context) health.Result {
		<-ctx.Done()
		return health.Result{Status: health.StatusUnhealthy, Message: ctx.Err().Error()}
	})
	assert.Equal(t, []string{"ok", "slow"}, c.Names())
	assert.Empty(t, c.Results())

	results := c.Check(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, health.StatusHealthy, results["ok"].Status)
	assert.Equal(t, "context deadline exceeded", results["slow"].Message)
	assert.False(t, results["ok"].LastChecked.IsZero())
	assert.Equal(t, health.StatusUnhealthy, health.Overall(results))
	assert.Len(t, c.Results(), 2)

	c.Unregister("slow")
	assert.Equal(t, []string{"ok"}, c.Names())
	assert.Equal(t, health.StatusHealthy, health.Overall(c.Check(context.Background())))
}

func TestOverall(t *testing.T) {
	assert.Equal(t, health.StatusHealthy, health.Overall(nil))
	assert.Equal(t, health.StatusDegraded, health.Overall(map[string]health.Result{
		"a": {Status: health.StatusHealthy},
		"b": {Status: health.StatusDegraded},
	}))
}
