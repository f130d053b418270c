package remote

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// event 一条待发送的日志事件，字段已展开为扁平结构
type event map[string]any

// newEvent 把 slog.Record 转换为事件
//
// 字段布局：dt、level、message，随后是 handler 预设字段和记录字段，分组以 "." 连接。
func newEvent(r slog.Record, preset []slog.Attr, groups []string) event {
	ev := make(event, 3+len(preset)+r.NumAttrs())
	ev["dt"] = r.Time.UTC().Format(time.RFC3339Nano)
	ev["level"] = levelName(r.Level)
	ev["message"] = r.Message

	prefix := strings.Join(groups, ".")
	for _, a := range preset {
		addAttr(ev, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(ev, prefix, a)
		return true
	})
	return ev
}

func addAttr(ev event, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if a.Key == "" {
			key = prefix
		}
		for _, ga := range attrs {
			addAttr(ev, key, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	ev[key] = attrValue(a.Value)
}

func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	}

	switch x := v.Any().(type) {
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		if _, err := json.Marshal(x); err != nil {
			return fmt.Sprintf("%+v", x)
		}
		return x
	}
}

// levelName 与 logplan 的级别名称保持一致
func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelDebug:
		return "Verbose"
	case l < slog.LevelInfo:
		return "Debug"
	case l < slog.LevelWarn:
		return "Information"
	case l < slog.LevelError:
		return "Warning"
	case l < slog.LevelError+4:
		return "Error"
	default:
		return "Fatal"
	}
}

// encodeBatch 按配置的编码序列化一批事件
func encodeBatch(encoding string, batch []event) ([]byte, string, error) {
	if encoding == EncodingMsgpack {
		body, err := msgpack.Marshal(batch)
		return body, "application/msgpack", err
	}
	body, err := json.Marshal(batch)
	return body, "application/json", err
}
