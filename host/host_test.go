package host

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/logkit/clog"
	"github.com/ceyewan/logkit/config"
	"github.com/ceyewan/logkit/logplan"
)

// syncBuffer 可并发写入的缓冲区，热更新时日志来自监听协程
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// consoleOnly 只启用 console sink，避免测试写文件
func consoleOnly(name string) func(*logplan.Options) {
	return func(o *logplan.Options) {
		o.ApplicationName = name
		o.EnableFile = false
	}
}

func newTestBuilder(dir string, out *syncBuffer) *Builder {
	return New(
		WithConfigOptions(config.WithConfigName("app"), config.WithConfigPaths(dir)),
		WithBuildOptions(clog.WithConsoleWriter(out), clog.WithConsoleColor(false)),
	)
}

func TestBuildWithoutLogging(t *testing.T) {
	app, err := newTestBuilder(t.TempDir(), &syncBuffer{}).Build(context.Background())
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.Nil(t, app.Plan)
	assert.NotNil(t, app.Config)
	assert.Equal(t, clog.Discard(), app.Logger)
}

func TestBuildResolvesAndActivatesPlan(t *testing.T) {
	out := &syncBuffer{}
	app, err := newTestBuilder(t.TempDir(), out).
		UseLogging(consoleOnly("Orders")).
		Build(context.Background())
	require.NoError(t, err)
	defer app.Close(context.Background())

	require.NotNil(t, app.Plan)
	assert.Equal(t, logplan.InformationLevel, app.Plan.MinimumLevel)
	_, hasConsole := app.Plan.Console()
	assert.True(t, hasConsole)
	_, hasRemote := app.Plan.Remote()
	assert.False(t, hasRemote)

	app.Logger.Info("started")
	app.Logger.Debug("not shown")
	assert.Contains(t, out.String(), "Application=Orders")
	assert.Contains(t, out.String(), "msg=started")
	assert.NotContains(t, out.String(), "not shown")
}

func TestBuildNilConfigure(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	app, err := newTestBuilder(dir, &syncBuffer{}).UseLogging(nil).Build(context.Background())
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.Equal(t, logplan.ResolveOptions(*logplan.DefaultOptions(), logplan.DefaultRemoteOptions()), app.Plan)
}

func TestBuildStartsWithBrokenFilePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	for _, path := range []string{"", filepath.Join(blocker, "log.txt")} {
		out, diag := &syncBuffer{}, &syncBuffer{}
		app, err := New(
			WithConfigOptions(config.WithConfigName("app"), config.WithConfigPaths(dir)),
			WithBuildOptions(
				clog.WithConsoleWriter(out), clog.WithConsoleColor(false),
				clog.WithDiagnostics(slog.New(slog.NewTextHandler(diag, nil))),
			),
		).
			UseLogging(func(o *logplan.Options) { o.LogFilePath = path }).
			Build(context.Background())
		require.NoError(t, err, path)

		file, ok := app.Plan.File()
		assert.True(t, ok)
		assert.Equal(t, path, file.Path)

		app.Logger.Info("console still works")
		assert.Contains(t, out.String(), "console still works")
		assert.Contains(t, diag.String(), "sink disabled")
		require.NoError(t, app.Close(context.Background()))
	}
}

func TestUseLoggingTwice(t *testing.T) {
	b := newTestBuilder(t.TempDir(), &syncBuffer{})
	b.UseLogging(consoleOnly("A")).UseLogging(consoleOnly("B"))

	_, err := b.Build(context.Background())
	assert.ErrorIs(t, err, ErrLoggingConfigured)
}

func TestBuildMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "Logging: [oops\n")

	_, err := newTestBuilder(dir, &syncBuffer{}).UseLogging(consoleOnly("A")).Build(context.Background())
	assert.Error(t, err)
}

func TestBuildRemoteFromEnvironment(t *testing.T) {
	t.Setenv("BetterStack__SourceToken", "tok123")
	t.Setenv("BetterStack__Endpoint", "http://127.0.0.1:1/")

	app, err := newTestBuilder(t.TempDir(), &syncBuffer{}).
		UseLogging(consoleOnly("Orders")).
		Build(context.Background())
	require.NoError(t, err)

	remote, ok := app.Plan.Remote()
	require.True(t, ok)
	assert.Equal(t, "tok123", remote.Token)
	assert.Equal(t, "http://127.0.0.1:1/", remote.Endpoint)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	assert.NoError(t, app.Close(ctx))
}

func TestBuildConfigOverridesWin(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
Logging:
  MinimumLevel: Error
  Override:
    Quartz: Debug
`)
	out := &syncBuffer{}
	app, err := newTestBuilder(dir, out).
		UseLogging(func(o *logplan.Options) {
			o.EnableFile = false
			o.MinimumLevel = "Debug"
		}).
		Build(context.Background())
	require.NoError(t, err)
	defer app.Close(context.Background())

	// 计划本身保持代码中的设置
	assert.Equal(t, logplan.DebugLevel, app.Plan.MinimumLevel)

	app.Logger.Warn("root warning")
	app.Logger.WithNamespace("Quartz", "Scheduler").Debug("quartz debug")

	assert.NotContains(t, out.String(), "root warning")
	assert.Contains(t, out.String(), "quartz debug")
}

func TestBuildWarnsOnInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
Logging:
  MinimumLevel: Loud
`)
	out := &syncBuffer{}
	app, err := newTestBuilder(dir, out).UseLogging(consoleOnly("A")).Build(context.Background())
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.Contains(t, out.String(), "logging configuration has problems")
}

func TestBuildWithLoader(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "BetterStack:\n  SourceToken: from-loader\n  Endpoint: http://127.0.0.1:1/\n")
	loader, err := config.New(config.WithConfigName("app"), config.WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	app, err := New(WithLoader(loader), WithBuildOptions(clog.WithConsoleWriter(&syncBuffer{}))).
		UseLogging(consoleOnly("A")).
		Build(context.Background())
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.Same(t, loader, app.Config)
	remote, ok := app.Plan.Remote()
	require.True(t, ok)
	assert.Equal(t, "from-loader", remote.Token)
}

func TestLevelHotReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "Logging:\n  MinimumLevel: Information\n")
	out := &syncBuffer{}

	app, err := newTestBuilder(dir, out).UseLogging(consoleOnly("A")).Build(context.Background())
	require.NoError(t, err)
	defer app.Close(context.Background())

	app.Logger.Debug("before reload")
	require.NoError(t, os.WriteFile(path, []byte("Logging:\n  MinimumLevel: Debug\n"), 0o644))

	assert.Eventually(t, func() bool {
		app.Logger.Debug("after reload")
		return strings.Contains(out.String(), "after reload")
	}, 5*time.Second, 50*time.Millisecond)
	assert.NotContains(t, out.String(), "before reload")
}

func TestAppCloseIdempotent(t *testing.T) {
	app, err := newTestBuilder(t.TempDir(), &syncBuffer{}).UseLogging(consoleOnly("A")).Build(context.Background())
	require.NoError(t, err)

	assert.NoError(t, app.Close(context.Background()))
	assert.NoError(t, app.Close(context.Background()))
}
