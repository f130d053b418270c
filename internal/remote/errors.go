package remote

import (
	"fmt"

	"github.com/ceyewan/logkit/xerrors"
)

// 错误定义
var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = xerrors.New("remote: invalid config")

	// ErrClosed sink 已关闭
	ErrClosed = xerrors.Wrap(xerrors.ErrClosed, "remote")
)

// StatusError 接入端返回了非 2xx 状态码
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: unexpected status %d", e.StatusCode)
}

// Retryable 429 和 5xx 可以重试，其余 4xx 不可重试
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
