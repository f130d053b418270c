package clog

import "github.com/ceyewan/logkit/xerrors"

// 错误定义
var (
	// ErrInvalidPlan 计划为空
	ErrInvalidPlan = xerrors.New("clog: invalid plan")

	// ErrFileSinkInUse 文件 sink 的路径已被另一个管道占用
	ErrFileSinkInUse = xerrors.New("clog: file sink path is in use")
)
