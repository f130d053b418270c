// Package logplan 把日志配置请求解析为一份惰性的 sink 装配计划。
//
// 解析过程：
//  1. 预置默认值（DefaultOptions）
//  2. 调用用户回调就地修改配置
//  3. 从 BetterStack 配置节绑定远程 sink 凭据
//  4. 解析最小级别（全函数，未知值降级为 Information）
//  5. 按 Console、File、Remote 顺序装配启用的 sink
//  6. 装配命名空间级别覆盖
//  7. 装配静态富化字段
//
// 解析没有失败路径，也没有副作用；激活 Plan（打开文件、启动远程发送）由 clog.Build 完成。
//
// 基本使用：
//
//	plan := logplan.Resolve(func(o *logplan.Options) {
//	    o.ApplicationName = "order-api"
//	    o.MinimumLevel = "Debug"
//	}, loader)
package logplan

import "strings"

// Resolve 解析日志配置，生成新的 Plan
//
// configure 可以为 nil；src 为 nil 时远程 sink 使用默认值（即不启用）。
func Resolve(configure func(*Options), src SectionReader) *Plan {
	opts := DefaultOptions()
	if configure != nil {
		configure(opts)
	}
	return ResolveOptions(*opts, BindRemote(src))
}

// BindRemote 从 RemoteSectionKey 配置节绑定远程 sink 凭据
//
// 键不区分大小写，未知键被忽略，缺失或空白的键保留默认值。
func BindRemote(src SectionReader) RemoteOptions {
	remote := DefaultRemoteOptions()
	if src == nil {
		return remote
	}
	section, ok := src.Section(RemoteSectionKey)
	if !ok || section == nil {
		return remote
	}
	if v, ok := section.Lookup("SourceToken"); ok {
		remote.SourceToken = v
	}
	if v, ok := section.Lookup("Endpoint"); ok && strings.TrimSpace(v) != "" {
		remote.Endpoint = strings.TrimSpace(v)
	}
	return remote
}

// ResolveOptions 对已经确定的配置执行级别解析和 sink 装配
func ResolveOptions(opts Options, remote RemoteOptions) *Plan {
	plan := &Plan{
		MinimumLevel:   ParseLevel(opts.MinimumLevel),
		Sinks:          make([]Sink, 0, 3),
		LevelOverrides: make(map[string]Level, len(opts.OverrideToWarning)),
		Enrichment:     make(map[string]string, 1),
	}

	if opts.EnableConsole {
		plan.Sinks = append(plan.Sinks, ConsoleSink{})
	}
	if opts.EnableFile {
		plan.Sinks = append(plan.Sinks, FileSink{
			Path:              opts.LogFilePath,
			RollingInterval:   opts.RollingInterval,
			RetainedFileCount: opts.RetainedFileCount,
			FileSizeLimitMB:   opts.FileSizeLimitMB,
		})
	}
	if remote.Enabled() {
		endpoint := strings.TrimSpace(remote.Endpoint)
		if endpoint == "" {
			endpoint = DefaultRemoteEndpoint
		}
		plan.Sinks = append(plan.Sinks, RemoteSink{
			Token:    strings.TrimSpace(remote.SourceToken),
			Endpoint: endpoint,
		})
	}

	// 重复的前缀覆盖到同一个键，效果幂等
	for _, prefix := range opts.OverrideToWarning {
		plan.LevelOverrides[prefix] = WarningLevel
	}

	if strings.TrimSpace(opts.ApplicationName) != "" {
		plan.Enrichment[ApplicationProperty] = opts.ApplicationName
	}

	return plan
}
