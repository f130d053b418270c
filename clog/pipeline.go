package clog

import (
	"context"
	"sync"
	"time"

	"github.com/ceyewan/logkit/internal/remote"
	"github.com/ceyewan/logkit/internal/rolling"
	"github.com/ceyewan/logkit/xerrors"
	"github.com/gofrs/flock"
)

// shutdownTimeout 关闭时等待远程 sink 发送剩余事件的最长时间
const shutdownTimeout = 5 * time.Second

// pipeline 持有 Logger 打开的资源，同一 Logger 派生出的子 Logger 共享同一个 pipeline
type pipeline struct {
	remote *remote.Handler
	files  []*rolling.Writer
	locks  []*flock.Flock

	closeOnce sync.Once
	closeErr  error
}

// flush 等待远程 sink 发送已入队的事件
func (p *pipeline) flush() {
	if p.remote != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = p.remote.Flush(ctx)
	}
	for _, f := range p.files {
		_ = f.Sync()
	}
}

// close 依次关闭远程 sink、文件和文件锁，可重复调用
func (p *pipeline) close() error {
	p.closeOnce.Do(func() {
		var errs []error
		if p.remote != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			errs = append(errs, p.remote.Close(ctx))
			cancel()
		}
		for _, f := range p.files {
			errs = append(errs, f.Close())
		}
		for _, l := range p.locks {
			errs = append(errs, l.Unlock())
		}
		p.closeErr = xerrors.Combine(errs...)
	})
	return p.closeErr
}
