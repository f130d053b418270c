package remote

import (
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// 事件结果
const (
	outcomeSent    = "sent"
	outcomeDropped = "dropped"
	outcomeFailed  = "failed"
)

// Stats 发送统计
type Stats struct {
	Sent    uint64 // 接入端确认的事件数
	Dropped uint64 // 队列已满、已关闭或熔断时丢弃的事件数
	Failed  uint64 // 重试耗尽后仍失败的事件数
}

type metrics struct {
	sent    atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
	events  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{}
	if reg == nil {
		return m
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logkit",
		Subsystem: "remote_sink",
		Name:      "events_total",
		Help:      "Log events handled by the remote sink, by outcome.",
	}, []string{"outcome"})

	if err := reg.Register(events); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				events = existing
			}
		} else {
			return m
		}
	}
	m.events = events
	return m
}

func (m *metrics) add(outcome string, n int) {
	if n <= 0 {
		return
	}
	switch outcome {
	case outcomeSent:
		m.sent.Add(uint64(n))
	case outcomeDropped:
		m.dropped.Add(uint64(n))
	case outcomeFailed:
		m.failed.Add(uint64(n))
	}
	if m.events != nil {
		m.events.WithLabelValues(outcome).Add(float64(n))
	}
}

func (m *metrics) snapshot() Stats {
	return Stats{
		Sent:    m.sent.Load(),
		Dropped: m.dropped.Load(),
		Failed:  m.failed.Load(),
	}
}
