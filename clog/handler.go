package clog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/ceyewan/logkit/internal/rolling"
	"github.com/ceyewan/logkit/logplan"
	"github.com/ceyewan/logkit/xerrors"
	"github.com/mattn/go-isatty"
)

// newHandler 为单输出 Logger 创建 slog.Handler（内部使用）
//
// 构造顺序：writer -> handler options -> base handler -> (optional) color handler。
// 文件输出使用不滚动的 rolling.Writer，由 pipeline 负责关闭。
func newHandler(config *Config, options *options, pipe *pipeline) (slog.Handler, error) {
	w, err := resolveWriter(config, options, pipe)
	if err != nil {
		return nil, err
	}

	opts := handlerOptions(config.AddSource, config.SourceRoot)
	if strings.ToLower(config.Format) == "json" {
		return slog.NewJSONHandler(w, opts), nil
	}
	return newTextHandler(w, config.EnableColor, opts), nil
}

// resolveWriter 根据配置创建输出 writer
func resolveWriter(config *Config, options *options, pipe *pipeline) (io.Writer, error) {
	switch strings.ToLower(config.Output) {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	case "buffer":
		if options.buffer != nil {
			return options.buffer, nil
		}
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "buffer output requires a buffer")
	default:
		w, err := rolling.New(rolling.Config{Path: config.Output, Interval: logplan.RollingInfinite})
		if err != nil {
			return nil, err
		}
		pipe.files = append(pipe.files, w)
		return w, nil
	}
}

// handlerOptions 所有级别都放行，级别过滤由 levelRouter 在记录创建前完成
func handlerOptions(addSource bool, sourceRoot string) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource:   addSource,
		Level:       slog.LevelDebug - 4,
		ReplaceAttr: newReplaceAttr(sourceRoot),
	}
}

// newTextHandler console 格式，color 为 true 时输出 ANSI 颜色
func newTextHandler(w io.Writer, color bool, opts *slog.HandlerOptions) slog.Handler {
	if color {
		return newColoredTextHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// isTerminal 判断 writer 是否为终端
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newReplaceAttr 统一处理 Level/Time/Source 等顶层字段
func newReplaceAttr(sourceRoot string) func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.LevelKey:
			if level, ok := a.Value.Any().(slog.Level); ok {
				a.Value = slog.StringValue(levelLabel(level))
			}
		case slog.TimeKey:
			if a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().Format(timeFormat))
			}
		case slog.SourceKey:
			if source, ok := a.Value.Any().(*slog.Source); ok {
				return slog.String("caller", formatCaller(source.File, source.Line, sourceRoot))
			}
		}
		return a
	}
}

func formatCaller(file string, line int, sourceRoot string) string {
	return trimSourcePath(file, sourceRoot) + ":" + strconv.Itoa(line)
}

// trimSourcePath 优先裁剪为相对 sourceRoot 的路径，否则保留 "目录/文件"
func trimSourcePath(fileName, sourceRoot string) string {
	if sourceRoot != "" {
		relPath, err := filepath.Rel(sourceRoot, fileName)
		if err == nil && !strings.HasPrefix(relPath, "..") {
			return relPath
		}
	}
	dir, file := filepath.Split(fileName)
	if dir == "" {
		return file
	}
	return filepath.Join(filepath.Base(dir), file)
}

// ANSI 颜色常量
const (
	ansiReset   = "\033[0m"
	ansiBold    = "\033[1m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
	ansiWhite   = "\033[37m"
	ansiGray    = "\033[90m"
	ansiBgRed   = "\033[41m"
)

// attrKV 展开后的字段，key 已带分组前缀
type attrKV struct {
	key   string
	value slog.Value
}

// coloredTextHandler 直接渲染带颜色的行：时间 | 级别 | 调用处 > 消息 字段
type coloredTextHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	opts   *slog.HandlerOptions
	preset []attrKV
	groups []string
}

func newColoredTextHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return &coloredTextHandler{mu: &sync.Mutex{}, writer: w, opts: opts}
}

func (h *coloredTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *coloredTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.Grow(128)

	if !r.Time.IsZero() {
		fmt.Fprintf(&buf, "%s%s%s ", ansiGray, r.Time.Format("15:04:05.000"), ansiReset)
	}
	fmt.Fprintf(&buf, "%s%s%-7s%s %s|%s ", ansiBold, levelColor(r.Level), levelLabel(r.Level), ansiReset, ansiGray, ansiReset)

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fmt.Fprintf(&buf, "%s%s%s %s>%s ", ansiGray, formatCaller(frame.File, frame.Line, ""), ansiReset, ansiCyan, ansiReset)
	}
	fmt.Fprintf(&buf, "%s%s%s", ansiWhite, r.Message, ansiReset)

	kvs := append([]attrKV(nil), h.preset...)
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		kvs = flattenAttr(kvs, prefix, a)
		return true
	})
	if len(kvs) > 0 {
		buf.WriteByte('\t')
		for i, kv := range kvs {
			if i > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%s%s%s%s=%s%s", ansiCyan, kv.key, ansiReset, ansiGray, ansiReset, formatValue(kv.value))
		}
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *coloredTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := strings.Join(h.groups, ".")
	preset := append([]attrKV(nil), h.preset...)
	for _, a := range attrs {
		preset = flattenAttr(preset, prefix, a)
	}
	return &coloredTextHandler{mu: h.mu, writer: h.writer, opts: h.opts, preset: preset, groups: h.groups}
}

func (h *coloredTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &coloredTextHandler{
		mu:     h.mu,
		writer: h.writer,
		opts:   h.opts,
		preset: h.preset,
		groups: append(append([]string(nil), h.groups...), name),
	}
}

// flattenAttr 展开分组，空字段被丢弃
func flattenAttr(kvs []attrKV, prefix string, a slog.Attr) []attrKV {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return kvs
	}
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			kvs = flattenAttr(kvs, key, ga)
		}
		return kvs
	}
	if key == "" {
		return kvs
	}
	return append(kvs, attrKV{key: key, value: a.Value})
}

// formatValue 含空白、引号或等号的值加引号
func formatValue(v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindTime {
		s = v.Time().Format(timeFormat)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// levelColor 根据日志级别返回对应的颜色代码
func levelColor(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return ansiBlue
	case level < slog.LevelInfo:
		return ansiMagenta
	case level < slog.LevelWarn:
		return ansiGreen
	case level < slog.LevelError:
		return ansiYellow
	case level < slog.LevelError+4:
		return ansiRed
	default:
		return ansiBgRed + ansiWhite
	}
}
