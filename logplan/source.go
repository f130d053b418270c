package logplan

import (
	"sort"
	"strings"
)

// Section 只读的配置节，键不区分大小写
//
// 嵌套键使用 "." 分隔，例如 Logging 节下的 "Override.Microsoft"。
type Section interface {
	// Lookup 查找键对应的值，键不存在时 ok 为 false
	Lookup(key string) (value string, ok bool)

	// Keys 返回节内所有叶子键
	Keys() []string
}

// SectionReader 按名称查找配置节
type SectionReader interface {
	// Section 返回指定名称的配置节，节不存在时 ok 为 false
	Section(name string) (section Section, ok bool)
}

// MapSource 基于内存 map 的 SectionReader：节名 -> 键 -> 值
//
// 节名和键都不区分大小写，适合测试和纯代码配置。
//
//	src := logplan.MapSource{
//	    "BetterStack": {"SourceToken": "tok123"},
//	}
type MapSource map[string]map[string]string

// Section 实现 SectionReader
func (m MapSource) Section(name string) (Section, bool) {
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return mapSection(v), true
		}
	}
	return nil, false
}

type mapSection map[string]string

func (s mapSection) Lookup(key string) (string, bool) {
	if v, ok := s[key]; ok {
		return v, true
	}
	for k, v := range s {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func (s mapSection) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
