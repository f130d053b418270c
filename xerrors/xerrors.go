// Package xerrors 为 logkit 各组件提供统一的错误处理工具。
//
// 约定：
//   - 各包在自己的 errors.go 中用 New 声明哨兵错误，消息以 "包名: " 开头
//   - 向上传递时用 Wrap/Wrapf 补充上下文，保留错误链
//   - 需要机器可读分类时用 WithCode 附加错误码
package xerrors

import (
	"errors"
	"fmt"
	"strings"
)

// 通用哨兵错误
var (
	// ErrInvalidInput 输入不合法
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyExists 目标已存在或已被占用
	ErrAlreadyExists = errors.New("already exists")

	// ErrClosed 组件已关闭
	ErrClosed = errors.New("closed")
)

// Wrap 用上下文信息包装错误，保留错误链。
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 用格式化的上下文信息包装错误。
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WithCode 用错误码包装错误。
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: code, Cause: err}
}

// CodedError 带有机器可读错误码的错误。
type CodedError struct {
	Code  string
	Cause error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("[%s]", e.Code)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// GetCode 从错误链中提取错误码，没有时返回空串。
func GetCode(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// Message 返回去掉错误码前缀的错误消息，err 为 nil 时返回空串。
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	var coded *CodedError
	for e := err; errors.As(e, &coded); e = coded.Cause {
		msg = strings.Replace(msg, "["+coded.Code+"] ", "", 1)
		if coded.Cause == nil {
			msg = strings.Replace(msg, "["+coded.Code+"]", "", 1)
			break
		}
	}
	return msg
}

// Collector 收集多个错误，保留第一个。
//
// 用于链式 API：链上的每一步只记录错误，由终结方法统一返回。
type Collector struct {
	err error
}

// Collect 记录错误，只保留第一个非 nil 错误。
func (c *Collector) Collect(err error) {
	if err != nil && c.err == nil {
		c.err = err
	}
}

// Err 返回收集到的第一个错误。
func (c *Collector) Err() error {
	return c.err
}

// MultiError 合并多个错误。
type MultiError struct {
	Errors []error
}

// Error 用 "; " 连接全部错误消息
func (m *MultiError) Error() string {
	msgs := make([]string, len(m.Errors))
	for i, err := range m.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Combine 将多个错误合并为一个，全部为 nil 时返回 nil。
//
// 关闭多个资源时使用：每个资源都要尝试关闭，错误最后一起返回。
func Combine(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return &MultiError{Errors: nonNil}
	}
}

// 标准库函数再导出
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)
