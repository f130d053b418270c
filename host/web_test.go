package host

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/logkit/clog"
	"github.com/ceyewan/logkit/config"
	"github.com/ceyewan/logkit/logplan"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestWebApp(t *testing.T, out *syncBuffer) *WebApp {
	t.Helper()
	var middlewareCalled bool
	app, err := NewWeb(
		WithConfigOptions(config.WithConfigName("app"), config.WithConfigPaths(t.TempDir())),
		WithBuildOptions(clog.WithConsoleWriter(out), clog.WithConsoleColor(false)),
	).
		UseLogging(consoleOnly("Shop")).
		Use(func(c *gin.Context) {
			middlewareCalled = true
			c.Next()
		}).
		Build(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.Close(context.Background())
		assert.True(t, middlewareCalled)
	})

	app.Engine.GET("/orders/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	app.Engine.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	app.Engine.GET("/panic", func(c *gin.Context) { panic("boom") })
	return app
}

func serve(app *WebApp, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	app.Engine.ServeHTTP(w, req)
	return w
}

func TestRequestLoggerInfo(t *testing.T) {
	out := &syncBuffer{}
	app := newTestWebApp(t, out)

	w := serve(app, "/orders/42")
	assert.Equal(t, http.StatusOK, w.Code)

	log := out.String()
	assert.Contains(t, log, "level=INFO")
	assert.Contains(t, log, "msg=\"request completed\"")
	assert.Contains(t, log, "route=/orders/:id")
	assert.Contains(t, log, "path=/orders/42")
	assert.Contains(t, log, "status=200")
	assert.Contains(t, log, "namespace=http")
	assert.Contains(t, log, "Application=Shop")
}

func TestRequestLoggerLevelByStatus(t *testing.T) {
	out := &syncBuffer{}
	app := newTestWebApp(t, out)

	serve(app, "/missing")
	assert.Contains(t, out.String(), "level=WARN")

	serve(app, "/nowhere")
	assert.Contains(t, out.String(), "route=unmatched")
}

func TestRecoveryLogsPanic(t *testing.T) {
	out := &syncBuffer{}
	app := newTestWebApp(t, out)

	w := serve(app, "/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	log := out.String()
	assert.Contains(t, log, "msg=\"panic recovered\"")
	assert.Contains(t, log, "panic=boom")
	assert.Contains(t, log, "level=ERROR")
	assert.Contains(t, log, "status=500")
}

func TestWebBuilderPropagatesErrors(t *testing.T) {
	_, err := NewWeb(WithConfigOptions(config.WithConfigPaths(t.TempDir()))).
		UseLogging(nil).
		UseLogging(nil).
		Build(context.Background())
	assert.ErrorIs(t, err, ErrLoggingConfigured)
}

func TestRequestLoggerTraceContext(t *testing.T) {
	out := &syncBuffer{}
	app := newTestWebApp(t, out)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/7", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	app.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, out.String(), "trace_id=4bf92f3577b34da6a3ce929d0e0e4736")
}

func TestServiceName(t *testing.T) {
	assert.Equal(t, defaultServiceName, serviceName(nil))
	assert.Equal(t, "Shop", serviceName(&logplan.Plan{
		Enrichment: map[string]string{logplan.ApplicationProperty: "Shop"},
	}))
}
