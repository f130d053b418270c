package clog

import (
	"log/slog"
	"strings"
)

// NamespaceKey 是日志中命名空间的字段名，用于标识服务模块
const NamespaceKey = "namespace"

// namespaceJoiner 命名空间各段之间的分隔符，与级别覆盖的前缀匹配规则一致
const namespaceJoiner = "."

// getNamespaceString 根据 options 中的 parts 生成完整的命名空间字符串
func getNamespaceString(options *options) string {
	if options == nil || len(options.namespaceParts) == 0 {
		return ""
	}
	return strings.Join(options.namespaceParts, namespaceJoiner)
}

// addNamespaceFields 将命名空间字段追加到 attrs
func addNamespaceFields(namespace string, attrs *[]slog.Attr) {
	if namespace != "" {
		*attrs = append(*attrs, slog.String(NamespaceKey, namespace))
	}
}
