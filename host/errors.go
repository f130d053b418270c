package host

import "github.com/ceyewan/logkit/xerrors"

// ErrLoggingConfigured UseLogging 在同一个 builder 上被调用了多次
var ErrLoggingConfigured = xerrors.Wrap(xerrors.ErrAlreadyExists, "host: logging already configured")
