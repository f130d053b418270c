// Package remote 实现日志远程接入 sink：把 slog 记录批量 POST 到 HTTP 接入端。
//
// 发送链路：Handle 入队 -> 后台协程按数量或时间攒批 -> 限流 -> 熔断 -> 指数退避重试。
// 队列满、sink 已关闭或熔断期间的事件被丢弃并计数，日志调用方永远不会被阻塞。
package remote

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Handler 远程 sink，实现 slog.Handler
//
// WithAttrs/WithGroup 派生的 Handler 共享同一个发送队列。
type Handler struct {
	core   *core
	attrs  []slog.Attr
	groups []string
}

// core 由同一个 sink 派生出的所有 Handler 共享
type core struct {
	cfg     Config
	client  *http.Client
	logger  *slog.Logger
	metrics *metrics
	breaker *gobreaker.CircuitBreaker[struct{}]
	limiter *rate.Limiter

	queue    chan event
	flushReq chan chan struct{}
	done     chan struct{}
	stopped  chan struct{}

	// mu 保证 Close 之后不会再有事件入队：Handle 持读锁完成检查和入队，Close 持写锁标记关闭
	mu        sync.RWMutex
	closed    atomic.Bool
	closeOnce sync.Once
}

// New 创建远程 sink 并启动后台发送协程
func New(cfg Config, opts ...Option) (*Handler, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts...)

	c := &core{
		cfg:      cfg,
		client:   o.client,
		logger:   o.logger.With(slog.String("component", "remote-sink")),
		metrics:  newMetrics(o.registerer),
		queue:    make(chan event, cfg.QueueSize),
		flushReq: make(chan chan struct{}),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	c.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "remote-sink",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	go c.run()

	return &Handler{core: c}, nil
}

// Enabled 远程 sink 不做级别过滤，过滤由上游完成
func (h *Handler) Enabled(context.Context, slog.Level) bool {
	return !h.core.closed.Load()
}

// Handle 把记录转换为事件并入队，队列满时丢弃
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	ev := newEvent(r, h.attrs, h.groups)

	h.core.mu.RLock()
	defer h.core.mu.RUnlock()
	if h.core.closed.Load() {
		h.core.metrics.add(outcomeDropped, 1)
		return ErrClosed
	}
	select {
	case h.core.queue <- ev:
	default:
		h.core.metrics.add(outcomeDropped, 1)
	}
	return nil
}

// WithAttrs 实现 slog.Handler
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	// 预设字段需要带上当前分组前缀
	grouped := attrs
	if len(h.groups) > 0 {
		grouped = []slog.Attr{groupAttr(h.groups, attrs)}
	}
	return &Handler{
		core:   h.core,
		attrs:  append(append([]slog.Attr(nil), h.attrs...), grouped...),
		groups: h.groups,
	}
}

// WithGroup 实现 slog.Handler
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{
		core:   h.core,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}

// Flush 发送队列中已有的事件，直到发送完成或 ctx 结束
func (h *Handler) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case h.core.flushReq <- ack:
	case <-h.core.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 停止接收新事件，发送剩余事件后退出后台协程。可重复调用。
func (h *Handler) Close(ctx context.Context) error {
	h.core.closeOnce.Do(func() {
		h.core.mu.Lock()
		h.core.closed.Store(true)
		h.core.mu.Unlock()
		close(h.core.done)
	})
	select {
	case <-h.core.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats 返回发送统计
func (h *Handler) Stats() Stats {
	return h.core.metrics.snapshot()
}

func groupAttr(groups []string, attrs []slog.Attr) slog.Attr {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	a := slog.Group(groups[len(groups)-1], args...)
	for i := len(groups) - 2; i >= 0; i-- {
		a = slog.Group(groups[i], a)
	}
	return a
}
