package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/getall/framework/app"
	"github.com/km-arc/getall/framework/capability"
	"github.com/km-arc/getall/framework/container"
)

type Job interface{ Run() string }

type cleanup struct{}

func (cleanup) Run() string { return "cleanup" }

type report struct{}

func (report) Run() string { return "report" }

func modules() []*capability.Module {
	return []*capability.Module{
		capability.NewModule("maintenance", capability.Type[cleanup]()),
		capability.NewModule("reports", capability.Type[report]()),
	}
}

func newApp(t *testing.T, env map[string]string) *app.Application {
	t.Helper()
	for _, key := range []string{"APP_ENV", "LOG_FORMAT", "CAPABILITY_MANIFEST"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("LOG_LEVEL", "error")
	for k, v := range env {
		t.Setenv(k, v)
	}
	a, err := app.New(modules(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	return a
}

func TestApplication_ResolvesJobsAcrossModules(t *testing.T) {
	a := newApp(t, nil)
	require.NoError(t, a.Boot())

	resolver, err := a.Resolver()
	require.NoError(t, err)

	jobs, err := capability.Collect[Job](context.Background(), resolver)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "cleanup", jobs[0].Run())
	assert.Equal(t, "report", jobs[1].Run())
}

func TestApplication_ManifestSelectsModules(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "modules.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("modules: [reports]\n"), 0o600))
	a := newApp(t, map[string]string{"CAPABILITY_MANIFEST": manifest})
	require.NoError(t, a.Boot())

	resolver, err := a.Resolver()
	require.NoError(t, err)
	jobs, err := capability.Collect[Job](context.Background(), resolver)
	require.NoError(t, err)

	require.Len(t, jobs, 1)
	assert.Equal(t, "report", jobs[0].Run())
}

func TestApplication_UnknownModuleFailsBoot(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "modules.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("modules: [billing]\n"), 0o600))
	a := newApp(t, map[string]string{"CAPABILITY_MANIFEST": manifest})

	assert.ErrorContains(t, a.Boot(), `unknown module "billing"`)
}

func TestApplication_ServicesReachableByType(t *testing.T) {
	a := newApp(t, map[string]string{"APP_NAME": "Kernel"})
	require.NoError(t, a.Boot())

	cfg, err := a.Config()
	require.NoError(t, err)
	assert.Equal(t, "Kernel", cfg.App.Name)

	log, err := a.Logger()
	require.NoError(t, err)
	assert.NotNil(t, log)

	scanner := container.MustResolve[*capability.Scanner](a.Container, container.KeyFor[*capability.Scanner]())
	resolver, err := a.Resolver()
	require.NoError(t, err)
	assert.Same(t, scanner, resolver.Scanner())
}

func TestApplication_LoggerBeforeBoot(t *testing.T) {
	a := newApp(t, nil)

	logger, err := a.Logger()
	require.NoError(t, err)
	require.NotNil(t, logger)

	again, err := a.Logger()
	require.NoError(t, err)
	assert.Same(t, logger, again)
}

func TestApplication_RouterIsDeferred(t *testing.T) {
	a := newApp(t, nil)
	require.NoError(t, a.Boot())
	assert.False(t, a.Resolved("router"))

	r, err := a.Router()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/modules", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, a.Resolved("router"))
}

func TestApplication_RunStopsOnCancel(t *testing.T) {
	a := newApp(t, map[string]string{"HTTP_PORT": "0"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, a.Run(ctx))
}
