package rolling

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/ceyewan/logkit/logplan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 14, 30, 0, 0, time.Local)}
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestPeriodPath(t *testing.T) {
	at := time.Date(2026, 10, 19, 14, 5, 0, 0, time.UTC)

	tests := []struct {
		path     string
		interval logplan.RollingInterval
		want     string
	}{
		{"logs/api-.txt", logplan.RollingHour, "logs/api-2026101914.txt"},
		{"logs/log.txt", logplan.RollingDay, "logs/log20261019.txt"},
		{"logs/log.txt", logplan.RollingMonth, "logs/log202610.txt"},
		{"logs/log.txt", logplan.RollingYear, "logs/log2026.txt"},
		{"logs/log.txt", logplan.RollingMinute, "logs/log202610191405.txt"},
		{"logs/log.txt", logplan.RollingInfinite, "logs/log.txt"},
		{"logs/app", logplan.RollingDay, "logs/app20261019"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodPath(tt.path, tt.interval, at))
		})
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	_, err := New(Config{Path: "  "})
	assert.Error(t, err)
}

func TestWriterCreatesDirectoryAndWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	clock := newClock()

	w, err := New(Config{Path: filepath.Join(dir, "api-.txt"), Interval: logplan.RollingHour, Now: clock.Now})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, filepath.Join(dir, "api-2026101914.txt"), w.Path())

	n, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	require.NoError(t, w.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "api-2026101914.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestWriterRollsOnPeriodChange(t *testing.T) {
	dir := t.TempDir()
	clock := newClock()

	w, err := New(Config{Path: filepath.Join(dir, "api-.txt"), Interval: logplan.RollingHour, Now: clock.Now})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "api-2026101915.txt"), w.Path())

	assert.Equal(t, []string{"api-2026101914.txt", "api-2026101915.txt"}, listFiles(t, dir))

	data, err := os.ReadFile(filepath.Join(dir, "api-2026101915.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))
}

func TestWriterRetainsNewestPeriods(t *testing.T) {
	dir := t.TempDir()
	clock := newClock()

	// 无关文件不受清理影响
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log2026101914-2026-10-19T14-59-00.000.txt"), []byte("x"), 0o644))

	w, err := New(Config{
		Path:          filepath.Join(dir, "log.txt"),
		Interval:      logplan.RollingHour,
		RetainedFiles: 2,
		Now:           clock.Now,
	})
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 4; i++ {
		_, err := w.Write([]byte("line\n"))
		require.NoError(t, err)
		clock.Advance(time.Hour)
	}

	assert.Equal(t, []string{"log2026101916.txt", "log2026101917.txt", "other.txt"}, listFiles(t, dir))
}

func TestWriterInfiniteNeverRolls(t *testing.T) {
	dir := t.TempDir()
	clock := newClock()

	w, err := New(Config{
		Path:          filepath.Join(dir, "log.txt"),
		Interval:      logplan.RollingInfinite,
		RetainedFiles: 1,
		Now:           clock.Now,
	})
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 3; i++ {
		_, err := w.Write([]byte("line\n"))
		require.NoError(t, err)
		clock.Advance(365 * 24 * time.Hour)
	}

	assert.Equal(t, []string{"log.txt"}, listFiles(t, dir))
	data, err := os.ReadFile(filepath.Join(dir, "log.txt"))
	require.NoError(t, err)
	assert.Equal(t, "line\nline\nline\n", string(data))
}

func TestWriterClose(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Path: filepath.Join(dir, "log.txt"), Interval: logplan.RollingDay})
	require.NoError(t, err)

	// 未写入时关闭
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late\n"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, w.Sync(), ErrClosed)
	assert.Empty(t, listFiles(t, dir))
}

func TestPeriodStamp(t *testing.T) {
	tests := []struct {
		name  string
		stamp string
		ok    bool
	}{
		{"log20261019.txt", "20261019", true},
		{"log20261019-2026-10-19T14-59-00.000.txt", "20261019", true},
		{"log.txt", "", false},
		{"log2026101.txt", "", false},
		{"logabcdefgh.txt", "", false},
		{"log20261019x.txt", "", false},
		{"log20261019.json", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp, ok := periodStamp(tt.name, "log", ".txt", 8)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.stamp, stamp)
		})
	}
}
