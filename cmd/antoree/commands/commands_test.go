package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshengliao/antoree/internal/testutil/backend"
	"github.com/yshengliao/antoree/internal/testutil/fixture"
)

// cli points every command at a fake backend and a file store in a temp dir
type cli struct {
	t       *testing.T
	backend *backend.Backend
	store   string
}

func newCLI(t *testing.T) *cli {
	b := backend.New(t)
	store := filepath.Join(t.TempDir(), "session.json")

	t.Setenv("NEXT_PUBLIC_API_URL", "")
	t.Setenv("ANTOREE_API_BASE_URL", b.BaseURL())
	t.Setenv("ANTOREE_STORAGE_DRIVER", "file")
	t.Setenv("ANTOREE_STORAGE_FILE", store)
	t.Setenv("ANTOREE_LOGGER_LEVEL", "error")

	return &cli{t: t, backend: b, store: store}
}

func (c *cli) run(args ...string) (string, error) {
	cmd := newRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestRoutesList(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("routes", "list")
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "/teachers/:id")
	assert.Contains(t, out, "auth,rateLimit,logging")

	out = c.mustRun("routes", "list", "--category", "contact")
	assert.Contains(t, out, "submit")
	assert.Contains(t, out, "2/1m0s")
	assert.NotContains(t, out, "/teachers")

	out = c.mustRun("routes", "list", "--category", "contact", "--yaml")
	assert.Contains(t, out, "CONTACT:")
	assert.Contains(t, out, "window_ms: 60000")

	_, err := c.run("routes", "list", "--category", "nope")
	assert.Error(t, err)
}

func TestCall(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("call", "teachers", "get", "--param", "id=t-1")
	assert.Contains(t, out, "Emily")

	out = c.mustRun("call", "teachers", "search", "--query", "q=tran")
	assert.Contains(t, out, "Tran Minh")
	req, ok := c.backend.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "/teachers/search", req.Path)
	assert.Equal(t, "q=tran", req.Query)

	_, err := c.run("call", "teachers", "get", "--param", "id=missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teacher not found")

	_, err = c.run("call", "teachers", "fly")
	assert.Error(t, err)

	_, err = c.run("call", "contact", "submit", "--data", "{not json")
	assert.Error(t, err)
}

func TestBaseURLFlagBeatsPublicEnv(t *testing.T) {
	c := newCLI(t)
	t.Setenv("NEXT_PUBLIC_API_URL", "http://127.0.0.1:1/api")

	_, err := c.run("call", "teachers", "get", "--param", "id=t-1")
	require.Error(t, err)
	assert.Empty(t, c.backend.Requests())

	out := c.mustRun("--base-url", c.backend.BaseURL()+"/", "call", "teachers", "get", "--param", "id=t-1")
	assert.Contains(t, out, "Emily")
	req, ok := c.backend.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "/teachers/t-1", req.Path)
}

func TestCallDataFromFile(t *testing.T) {
	c := newCLI(t)
	body := filepath.Join(t.TempDir(), "contact.json")
	require.NoError(t, os.WriteFile(body, []byte(`{"name":"Lan","email":"lan@example.com","message":"Hello"}`), 0o600))

	c.mustRun("call", "contact", "submit", "--data", "@"+body)

	req, ok := c.backend.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "POST", req.Method)
	assert.Contains(t, string(req.Body), `"Hello"`)
}

func TestCallRequiresLogin(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("call", "students", "get", "--param", "id=stu-1")
	require.Error(t, err)
	assert.Empty(t, c.backend.Requests())
}

func TestLoginPersistsSession(t *testing.T) {
	c := newCLI(t)
	student := fixture.SampleStudent()

	_, err := c.run("login", "--email", student.Email, "--password", "wrong-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")

	out := c.mustRun("login", "--email", student.Email, "--password", fixture.Password)
	assert.Contains(t, out, student.Email)

	// A new process picks the token up from the file store
	out = c.mustRun("token", "show")
	assert.Contains(t, out, student.ID)
	assert.Contains(t, out, "valid")

	out = c.mustRun("call", "students", "get", "--param", "id="+student.ID)
	assert.Contains(t, out, student.Email)

	out = c.mustRun("logout")
	assert.Contains(t, out, "Logged out")
	assert.Contains(t, c.mustRun("token", "show"), "No token")
	assert.Contains(t, c.mustRun("logout"), "Not logged in")
}

func TestTokenSetAndClear(t *testing.T) {
	c := newCLI(t)

	c.mustRun("token", "set", c.backend.Token())
	out := c.mustRun("call", "auth", "me")
	assert.Contains(t, out, fixture.SampleStudent().Email)

	c.mustRun("token", "clear")
	assert.Contains(t, c.mustRun("token", "show"), "No token")
	assert.Len(t, c.backend.Requests(), 1)
}

func TestLanguage(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("language", "vi-vn")
	assert.Equal(t, "vi-VN\n", out)
	assert.Equal(t, "vi-VN\n", c.mustRun("language"))

	c.mustRun("call", "teachers", "list")
	req, ok := c.backend.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "vi-VN", req.Header.Get("Accept-Language"))

	_, err := c.run("language", "not a tag")
	assert.Error(t, err)
}

func TestMetricsFlag(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("--metrics", "call", "teachers", "list")
	assert.Contains(t, out, "requests_total")
}

func TestHealth(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("health")
	assert.Contains(t, out, "api")
	assert.Contains(t, out, "store")
	assert.Contains(t, out, "healthy")

	out, err := c.run("health", "--endpoint", "/broken")
	require.Error(t, err)
	assert.Contains(t, out, "unhealthy")
}
