package config

import "github.com/ceyewan/logkit/xerrors"

// 错误定义
var (
	// ErrValidationFailed 配置校验失败
	ErrValidationFailed = xerrors.New("config: validation failed")
)

// IsInvalidInput 检查错误是否为输入无效
func IsInvalidInput(err error) bool {
	return xerrors.Is(err, xerrors.ErrInvalidInput)
}

// IsValidationError 检查错误是否来自 Validate
func IsValidationError(err error) bool {
	return xerrors.Is(err, ErrValidationFailed)
}

// WrapLoadError 包装加载错误
func WrapLoadError(err error, name string) error {
	if err == nil {
		return nil
	}
	return xerrors.Wrapf(err, "config: failed to load %s", name)
}
