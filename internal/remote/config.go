package remote

import (
	"strings"
	"time"

	"github.com/ceyewan/logkit/xerrors"
)

// 编码方式
const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

// Config 远程 sink 配置
type Config struct {
	Endpoint string // 接入地址
	Token    string // source token，以 Bearer 方式发送

	BatchSize     int           // 单批最大事件数，默认 100
	FlushInterval time.Duration // 未满批时的发送间隔，默认 1s
	QueueSize     int           // 待发送队列长度，满时丢弃新事件，默认 10000
	Timeout       time.Duration // 单次 HTTP 请求超时，默认 10s
	Encoding      string        // json | msgpack，默认 json

	MaxRetries           int           // 单批最大重试次数，默认 3，小于 0 表示不重试
	RetryInitialInterval time.Duration // 首次重试间隔，默认 500ms
	RetryMaxInterval     time.Duration // 最大重试间隔，默认 10s

	BreakerThreshold uint32        // 连续失败多少批后熔断，默认 5
	BreakerTimeout   time.Duration // 熔断后多久进入半开，默认 30s

	RateLimit float64 // 每秒最多发送的批次数，0 表示不限制
}

// setDefaults 为零值字段设置默认值
func (c *Config) setDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = time.Second
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 10000
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	c.Encoding = strings.ToLower(strings.TrimSpace(c.Encoding))
	if c.Encoding == "" {
		c.Encoding = EncodingJSON
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryInitialInterval <= 0 {
		c.RetryInitialInterval = 500 * time.Millisecond
	}
	if c.RetryMaxInterval <= 0 {
		c.RetryMaxInterval = 10 * time.Second
	}
	if c.BreakerThreshold == 0 {
		c.BreakerThreshold = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
}

// maxTries 返回包含首次请求在内的最大尝试次数
func (c *Config) maxTries() uint {
	if c.MaxRetries < 0 {
		return 1
	}
	return uint(c.MaxRetries) + 1
}

// validate 检查必填字段
func (c *Config) validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return xerrors.Wrap(ErrInvalidConfig, "endpoint is empty")
	}
	if strings.TrimSpace(c.Token) == "" {
		return xerrors.Wrap(ErrInvalidConfig, "token is empty")
	}
	if c.Encoding != EncodingJSON && c.Encoding != EncodingMsgpack {
		return xerrors.Wrapf(ErrInvalidConfig, "unsupported encoding %q", c.Encoding)
	}
	if c.RateLimit < 0 {
		return xerrors.Wrap(ErrInvalidConfig, "rate limit must not be negative")
	}
	return nil
}
