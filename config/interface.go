// Package config 为 logkit 提供分层配置加载能力，基于 Viper 实现。
//
// 特性：
//   - 多源配置加载：YAML/JSON 文件、.env 文件、进程环境变量
//   - 配置优先级：环境变量 > .env > 环境特定配置 > 基础配置
//   - 环境变量使用双下划线分层：BetterStack__SourceToken 覆盖 BetterStack.SourceToken
//   - 配置节视图：Loader 实现 logplan.SectionReader，可直接交给 logplan.Resolve
//   - 热更新支持：监听配置文件变化并通知订阅者
//
// 配置文件缺失不是错误，日志必须能在一台什么都没配置的机器上启动；
// 配置文件格式错误则原样返回给调用方。
//
// 基本使用：
//
//	loader := config.MustLoad(
//		config.WithConfigName("config"),
//		config.WithConfigPaths("./config"),
//	)
//
//	plan := logplan.Resolve(nil, loader)
//
//	// 监听配置变化
//	ch, _ := loader.Watch(ctx, "Logging.MinimumLevel")
//	for event := range ch {
//		fmt.Printf("配置变化: %s = %v\n", event.Key, event.Value)
//	}
package config

import (
	"context"
	"time"

	"github.com/ceyewan/logkit/logplan"
)

// Loader 定义配置加载器的核心行为
// 职责：加载、解析和监听配置变化
type Loader interface {
	// Load 加载配置并初始化内部状态
	Load(ctx context.Context) error

	// Get 获取原始配置值，键不区分大小写
	Get(key string) any

	// Unmarshal 将整个配置反序列化到结构体
	Unmarshal(v any) error

	// UnmarshalKey 将指定 Key 的配置反序列化到结构体
	UnmarshalKey(key string, v any) error

	// Section 返回合并了所有配置层的配置节视图
	Section(name string) (logplan.Section, bool)

	// Watch 监听配置变化，通过 context 取消监听
	Watch(ctx context.Context, key string) (<-chan Event, error)

	// Validate 检查日志相关配置节中可以被提前发现的问题
	//
	// Load 不会调用 Validate：日志配置的问题只降级，不阻止启动。
	Validate() error
}

// Event 配置变更事件
type Event struct {
	Key       string // 配置 key
	Value     any    // 新值
	OldValue  any    // 旧值
	Source    string // "file" | "env"
	Timestamp time.Time
}
