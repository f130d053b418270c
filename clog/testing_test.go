package clog

import (
	"bytes"
)

// withBuffer 是一个测试专用选项，用于将日志输出写入指定的缓冲区
//
// New 的 Output 为 "buffer" 时生效；Build 时替换 console sink 的输出。
func withBuffer(buf *bytes.Buffer) Option {
	return func(o *options) {
		o.buffer = buf
		o.consoleWriter = buf
	}
}
