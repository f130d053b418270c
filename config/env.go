package config

import "strings"

// envDelimiter 环境变量中的层级分隔符
const envDelimiter = "__"

// environmentOverrides 把环境变量转换为 viper 键
//
// 只处理包含双下划线的变量，例如 BetterStack__SourceToken -> betterstack.sourcetoken。
// 设置了 prefix 时只处理 PREFIX__ 开头的变量，并去掉前缀。
func environmentOverrides(environ []string, prefix string) map[string]string {
	out := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.Contains(name, envDelimiter) {
			continue
		}

		if prefix != "" {
			head := prefix + envDelimiter
			if len(name) <= len(head) || !strings.EqualFold(name[:len(head)], head) {
				continue
			}
			name = name[len(head):]
		}

		parts := strings.Split(name, envDelimiter)
		valid := true
		for _, p := range parts {
			if p == "" {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		out[strings.ToLower(strings.Join(parts, "."))] = value
	}
	return out
}
