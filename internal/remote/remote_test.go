package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// ============================================================
// 测试辅助
// ============================================================

// ingestServer 记录收到的请求，按 statuses 依次返回状态码，用完后返回 202
type ingestServer struct {
	*httptest.Server

	mu       sync.Mutex
	statuses []int
	bodies   [][]byte
	headers  []http.Header
	requests atomic.Int32
}

func newIngestServer(t *testing.T, statuses ...int) *ingestServer {
	t.Helper()
	s := &ingestServer{statuses: statuses}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.bodies = append(s.bodies, body)
		s.headers = append(s.headers, r.Header.Clone())
		status := http.StatusAccepted
		if len(s.statuses) > 0 {
			status = s.statuses[0]
			s.statuses = s.statuses[1:]
		}
		s.mu.Unlock()

		w.WriteHeader(status)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *ingestServer) lastBody() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bodies) == 0 {
		return nil
	}
	return s.bodies[len(s.bodies)-1]
}

func (s *ingestServer) lastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headers) == 0 {
		return nil
	}
	return s.headers[len(s.headers)-1]
}

func newTestHandler(t *testing.T, endpoint string, mutate func(*Config), opts ...Option) *Handler {
	t.Helper()
	cfg := Config{
		Endpoint:             endpoint,
		Token:                "tok123",
		FlushInterval:        time.Hour,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     5 * time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(context.Background()) })
	return h
}

func record(level slog.Level, msg string, attrs ...slog.Attr) slog.Record {
	r := slog.NewRecord(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), level, msg, 0)
	r.AddAttrs(attrs...)
	return r
}

func flush(t *testing.T, h *Handler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.Flush(ctx))
}

// ============================================================
// 配置
// ============================================================

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.setDefaults()

	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.FlushInterval)
	assert.Equal(t, 10000, cfg.QueueSize)
	assert.Equal(t, EncodingJSON, cfg.Encoding)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, uint(4), cfg.maxTries())
	assert.Equal(t, uint32(5), cfg.BreakerThreshold)

	cfg.MaxRetries = -1
	assert.Equal(t, uint(1), cfg.maxTries())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"缺少 endpoint", Config{Token: "tok"}},
		{"缺少 token", Config{Endpoint: "http://x"}},
		{"未知编码", Config{Endpoint: "http://x", Token: "tok", Encoding: "xml"}},
		{"负数限流", Config{Endpoint: "http://x", Token: "tok", RateLimit: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

// ============================================================
// 发送
// ============================================================

func TestHandlerSendsJSONBatch(t *testing.T) {
	srv := newIngestServer(t)
	h := newTestHandler(t, srv.URL, nil)

	var handler slog.Handler = h
	handler = handler.WithAttrs([]slog.Attr{slog.String("Application", "Svc")})
	handler = handler.WithGroup("req")

	ctx := context.Background()
	require.NoError(t, handler.Handle(ctx, record(slog.LevelInfo, "order created", slog.Int("id", 7))))
	require.NoError(t, handler.Handle(ctx, record(slog.LevelWarn, "slow", slog.Duration("took", 2*time.Second))))
	flush(t, h)

	require.Equal(t, int32(1), srv.requests.Load())
	header := srv.lastHeader()
	assert.Equal(t, "Bearer tok123", header.Get("Authorization"))
	assert.Equal(t, "application/json", header.Get("Content-Type"))

	var events []map[string]any
	require.NoError(t, json.Unmarshal(srv.lastBody(), &events))
	require.Len(t, events, 2)

	assert.Equal(t, "order created", events[0]["message"])
	assert.Equal(t, "Information", events[0]["level"])
	assert.Equal(t, "2026-10-19T08:00:00Z", events[0]["dt"])
	assert.Equal(t, "Svc", events[0]["Application"])
	assert.Equal(t, float64(7), events[0]["req.id"])
	assert.Equal(t, "Warning", events[1]["level"])
	assert.Equal(t, "2s", events[1]["req.took"])

	assert.Equal(t, Stats{Sent: 2}, h.Stats())
}

func TestHandlerSendsMsgpack(t *testing.T) {
	srv := newIngestServer(t)
	h := newTestHandler(t, srv.URL, func(c *Config) { c.Encoding = "MSGPACK" })

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelError, "boom", slog.Any("err", errors.New("disk full")))))
	flush(t, h)

	assert.Equal(t, "application/msgpack", srv.lastHeader().Get("Content-Type"))
	var events []map[string]any
	require.NoError(t, msgpack.Unmarshal(srv.lastBody(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Error", events[0]["level"])
	assert.Equal(t, "disk full", events[0]["err"])
}

func TestHandlerFlushesOnBatchSize(t *testing.T) {
	srv := newIngestServer(t)
	h := newTestHandler(t, srv.URL, func(c *Config) { c.BatchSize = 2 })

	for i := 0; i < 4; i++ {
		require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "tick")))
	}

	assert.Eventually(t, func() bool { return srv.requests.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return h.Stats().Sent == 4 }, 5*time.Second, 10*time.Millisecond)
}

func TestHandlerFlushesOnInterval(t *testing.T) {
	srv := newIngestServer(t)
	h := newTestHandler(t, srv.URL, func(c *Config) { c.FlushInterval = 10 * time.Millisecond })

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "tick")))
	assert.Eventually(t, func() bool { return h.Stats().Sent == 1 }, 5*time.Second, 10*time.Millisecond)
}

// ============================================================
// 重试与熔断
// ============================================================

func TestHandlerRetriesServerErrors(t *testing.T) {
	srv := newIngestServer(t, http.StatusServiceUnavailable, http.StatusTooManyRequests)
	h := newTestHandler(t, srv.URL, nil)

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "retry me")))
	flush(t, h)

	assert.Equal(t, int32(3), srv.requests.Load())
	assert.Equal(t, Stats{Sent: 1}, h.Stats())
}

func TestHandlerDoesNotRetryClientErrors(t *testing.T) {
	srv := newIngestServer(t, http.StatusUnauthorized)
	h := newTestHandler(t, srv.URL, nil)

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "bad token")))
	flush(t, h)

	assert.Equal(t, int32(1), srv.requests.Load())
	assert.Equal(t, Stats{Failed: 1}, h.Stats())
}

func TestHandlerCircuitBreaker(t *testing.T) {
	srv := newIngestServer(t, 500, 500, 500, 500, 500)
	h := newTestHandler(t, srv.URL, func(c *Config) {
		c.MaxRetries = -1
		c.BreakerThreshold = 2
		c.BreakerTimeout = time.Hour
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "down")))
		flush(t, h)
	}

	// 第三批在熔断打开后直接丢弃，不再发请求
	assert.Equal(t, int32(2), srv.requests.Load())
	assert.Equal(t, Stats{Failed: 2, Dropped: 1}, h.Stats())
}

func TestHandlerRateLimit(t *testing.T) {
	srv := newIngestServer(t)
	h := newTestHandler(t, srv.URL, func(c *Config) { c.RateLimit = 1000 })

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "limited")))
	flush(t, h)
	assert.Equal(t, Stats{Sent: 1}, h.Stats())
}

// ============================================================
// 关闭与指标
// ============================================================

func TestHandlerCloseDrainsQueue(t *testing.T) {
	srv := newIngestServer(t)
	h := newTestHandler(t, srv.URL, nil)

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "last words")))
	require.NoError(t, h.Close(context.Background()))
	require.NoError(t, h.Close(context.Background()))

	assert.Equal(t, int32(1), srv.requests.Load())
	assert.False(t, h.Enabled(context.Background(), slog.LevelError))

	err := h.Handle(context.Background(), record(slog.LevelInfo, "too late"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, Stats{Sent: 1, Dropped: 1}, h.Stats())

	// 关闭后 Flush 直接返回
	assert.NoError(t, h.Flush(context.Background()))
}

func TestHandlerCloseAccountsConcurrentEvents(t *testing.T) {
	srv := newIngestServer(t)
	h := newTestHandler(t, srv.URL, nil)

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for range perWorker {
				_ = h.Handle(context.Background(), record(slog.LevelInfo, "racing"))
			}
		}()
	}

	close(start)
	require.NoError(t, h.Close(context.Background()))
	wg.Wait()

	// 每个事件要么已发送，要么计为丢弃，不会在关闭时无声丢失
	stats := h.Stats()
	assert.Equal(t, uint64(workers*perWorker), stats.Sent+stats.Dropped)
	assert.Zero(t, stats.Failed)
}

func TestHandlerRegistersMetrics(t *testing.T) {
	srv := newIngestServer(t)
	reg := prometheus.NewRegistry()
	h := newTestHandler(t, srv.URL, nil, WithRegisterer(reg))

	// 第二个 sink 复用已注册的计数器
	h2 := newTestHandler(t, srv.URL, nil, WithRegisterer(reg))

	require.NoError(t, h.Handle(context.Background(), record(slog.LevelInfo, "a")))
	require.NoError(t, h2.Handle(context.Background(), record(slog.LevelInfo, "b")))
	flush(t, h)
	flush(t, h2)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "logkit_remote_sink_events_total", families[0].GetName())
	require.Len(t, families[0].GetMetric(), 1)
	assert.Equal(t, float64(2), families[0].GetMetric()[0].GetCounter().GetValue())
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "Verbose", levelName(slog.LevelDebug-4))
	assert.Equal(t, "Debug", levelName(slog.LevelDebug))
	assert.Equal(t, "Information", levelName(slog.LevelInfo))
	assert.Equal(t, "Warning", levelName(slog.LevelWarn))
	assert.Equal(t, "Error", levelName(slog.LevelError))
	assert.Equal(t, "Fatal", levelName(slog.LevelError+4))
}
