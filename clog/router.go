package clog

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/maypok86/otter/v2"
)

// levelOverride 命名空间前缀的级别覆盖，prefix 已转为小写
type levelOverride struct {
	prefix string
	level  Level
}

// levelRouter 按命名空间决定最低级别
//
// 命名空间与覆盖前缀按 "." 分段匹配，不区分大小写，最长的前缀生效；
// 没有匹配的命名空间使用全局级别。匹配结果缓存在 otter 中，SetLevel 只修改全局级别，不影响缓存。
type levelRouter struct {
	global    atomic.Int32
	overrides []levelOverride
	matches   *otter.Cache[string, int] // 小写命名空间 -> overrides 下标，-1 表示无匹配
}

// newLevelRouter 创建路由，overrides 的键为命名空间前缀
func newLevelRouter(minimum Level, overrides map[string]Level) *levelRouter {
	r := &levelRouter{}
	r.global.Store(int32(minimum))

	for prefix, level := range overrides {
		prefix = strings.ToLower(strings.TrimSpace(prefix))
		if prefix == "" {
			continue
		}
		r.overrides = append(r.overrides, levelOverride{prefix: prefix, level: level})
	}
	if len(r.overrides) == 0 {
		return r
	}
	sort.Slice(r.overrides, func(i, j int) bool {
		if len(r.overrides[i].prefix) != len(r.overrides[j].prefix) {
			return len(r.overrides[i].prefix) > len(r.overrides[j].prefix)
		}
		return r.overrides[i].prefix < r.overrides[j].prefix
	})

	cache, err := otter.New(&otter.Options[string, int]{MaximumSize: 4096})
	if err == nil {
		r.matches = cache
	}
	return r
}

// setGlobal 修改全局最低级别
func (r *levelRouter) setGlobal(level Level) {
	r.global.Store(int32(level))
}

// minimum 返回命名空间生效的最低级别
func (r *levelRouter) minimum(namespace string) Level {
	if len(r.overrides) == 0 || namespace == "" {
		return Level(r.global.Load())
	}
	if idx := r.match(strings.ToLower(namespace)); idx >= 0 {
		return r.overrides[idx].level
	}
	return Level(r.global.Load())
}

// enabled 判断命名空间下该级别的日志是否输出
func (r *levelRouter) enabled(namespace string, level Level) bool {
	return level >= r.minimum(namespace)
}

func (r *levelRouter) match(namespace string) int {
	if r.matches != nil {
		if idx, ok := r.matches.GetIfPresent(namespace); ok {
			return idx
		}
	}

	idx := -1
	for i, o := range r.overrides {
		if namespace == o.prefix || strings.HasPrefix(namespace, o.prefix+".") {
			idx = i
			break
		}
	}

	if r.matches != nil {
		r.matches.Set(namespace, idx)
	}
	return idx
}
