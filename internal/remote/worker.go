package remote

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker/v2"
)

// run 后台发送循环
func (c *core) run() {
	defer close(c.stopped)

	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]event, 0, c.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		c.send(batch)
		batch = batch[:0]
	}
	// drain 取出队列中当前已有的全部事件
	drain := func() {
		for {
			select {
			case ev := <-c.queue:
				batch = append(batch, ev)
				if len(batch) >= c.cfg.BatchSize {
					flush()
				}
			default:
				flush()
				return
			}
		}
	}

	for {
		select {
		case ev := <-c.queue:
			batch = append(batch, ev)
			if len(batch) >= c.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case ack := <-c.flushReq:
			drain()
			close(ack)
		case <-c.done:
			drain()
			return
		}
	}
}

// send 编码并发送一批事件，结果计入统计
func (c *core) send(batch []event) {
	n := len(batch)
	body, contentType, err := encodeBatch(c.cfg.Encoding, batch)
	if err != nil {
		c.metrics.add(outcomeFailed, n)
		c.logger.Error("failed to encode batch", slog.Int("events", n), slog.Any("error", err))
		return
	}

	if c.limiter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
		err := c.limiter.Wait(ctx)
		cancel()
		if err != nil {
			c.metrics.add(outcomeDropped, n)
			c.logger.Warn("rate limit wait exceeded, batch dropped", slog.Int("events", n))
			return
		}
	}

	_, err = c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.post(body, contentType)
	})
	switch {
	case err == nil:
		c.metrics.add(outcomeSent, n)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.add(outcomeDropped, n)
		c.logger.Debug("circuit open, batch dropped", slog.Int("events", n))
	default:
		c.metrics.add(outcomeFailed, n)
		c.logger.Warn("failed to send batch", slog.Int("events", n), slog.Any("error", err))
	}
}

// post 发送一次请求体，按状态码决定是否重试
func (c *core) post(body []byte, contentType string) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.cfg.RetryInitialInterval
	eb.MaxInterval = c.cfg.RetryMaxInterval

	operation := func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

		resp, err := c.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return struct{}{}, nil
		}
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		if statusErr.Retryable() {
			return struct{}{}, statusErr
		}
		return struct{}{}, backoff.Permanent(statusErr)
	}

	_, err := backoff.Retry(context.Background(), operation,
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(c.cfg.maxTries()),
	)
	return err
}
