// Package rolling 提供按时间周期滚动的日志文件写入器。
//
// 文件名在扩展名前插入周期戳，例如 logs/api-.txt 按小时滚动时写入 logs/api-2026101914.txt。
// 同一周期内按大小滚动交给 lumberjack 处理；周期切换时关闭旧文件，并清理超出保留数量的旧周期文件。
package rolling

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ceyewan/logkit/logplan"
	"github.com/ceyewan/logkit/xerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ErrClosed 写入器已关闭
var ErrClosed = xerrors.Wrap(xerrors.ErrClosed, "rolling")

// Config 写入器配置
type Config struct {
	Path          string                  // 基础路径，周期戳插入在扩展名之前
	Interval      logplan.RollingInterval // 滚动周期
	MaxSizeMB     int                     // 单个文件大小上限，<=0 时使用 logplan.DefaultFileSizeLimitMB
	RetainedFiles int                     // 保留的周期文件数量（含当前），<=0 表示不清理

	// Now 返回当前时间，测试时可替换
	Now func() time.Time
}

// Writer 线程安全的滚动写入器，实现 io.WriteCloser
type Writer struct {
	mu      sync.Mutex
	cfg     Config
	period  time.Time
	path    string
	current *lumberjack.Logger
	closed  bool
}

// New 创建写入器，文件在第一次写入时打开
func New(cfg Config) (*Writer, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "rolling: path is empty")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = logplan.DefaultFileSizeLimitMB
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, xerrors.Wrapf(err, "rolling: create directory for %s", cfg.Path)
	}
	return &Writer{cfg: cfg}, nil
}

// PeriodPath 返回 t 所在周期的文件路径
func PeriodPath(path string, interval logplan.RollingInterval, t time.Time) string {
	layout := interval.Layout()
	if layout == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + t.Format(layout) + ext
}

// Write 写入当前周期的文件，必要时先切换周期
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, ErrClosed
	}

	now := w.cfg.Now()
	period := w.cfg.Interval.Truncate(now)
	if w.current == nil || !period.Equal(w.period) {
		w.roll(period, now)
	}
	return w.current.Write(p)
}

// roll 关闭上一周期的文件并打开新周期
func (w *Writer) roll(period, now time.Time) {
	if w.current != nil {
		_ = w.current.Close()
	}
	w.period = period
	w.path = PeriodPath(w.cfg.Path, w.cfg.Interval, now)
	w.current = &lumberjack.Logger{
		Filename:   w.path,
		MaxSize:    w.cfg.MaxSizeMB,
		MaxBackups: max(w.cfg.RetainedFiles, 0),
		LocalTime:  true,
	}
	w.cleanup()
}

// cleanup 删除超出保留数量的旧周期文件及其大小备份
func (w *Writer) cleanup() {
	layout := w.cfg.Interval.Layout()
	if layout == "" || w.cfg.RetainedFiles <= 0 {
		return
	}

	dir := filepath.Dir(w.cfg.Path)
	ext := filepath.Ext(w.cfg.Path)
	prefix := filepath.Base(strings.TrimSuffix(w.cfg.Path, ext))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	byStamp := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stamp, ok := periodStamp(e.Name(), prefix, ext, len(layout))
		if !ok {
			continue
		}
		byStamp[stamp] = append(byStamp[stamp], filepath.Join(dir, e.Name()))
	}

	// 当前周期的文件可能还未创建，但始终占一个保留名额
	currentStamp, _ := periodStamp(filepath.Base(w.path), prefix, ext, len(layout))
	if _, ok := byStamp[currentStamp]; !ok {
		byStamp[currentStamp] = nil
	}

	stamps := make([]string, 0, len(byStamp))
	for s := range byStamp {
		stamps = append(stamps, s)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(stamps)))

	for _, s := range stamps[min(w.cfg.RetainedFiles, len(stamps)):] {
		if s == currentStamp {
			continue
		}
		for _, name := range byStamp[s] {
			_ = os.Remove(name)
		}
	}
}

// periodStamp 从文件名中取出周期戳
//
// 匹配 <prefix><stamp><ext> 以及 lumberjack 的备份 <prefix><stamp>-<time><ext>。
func periodStamp(name, prefix, ext string, width int) (string, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
		return "", false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
	if len(rest) < width {
		return "", false
	}
	stamp := rest[:width]
	for _, c := range stamp {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	if len(rest) > width && rest[width] != '-' {
		return "", false
	}
	return stamp, true
}

// Sync lumberjack 不缓冲写入，这里只检查状态
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return nil
}

// Path 返回当前周期的文件路径
func (w *Writer) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.path != "" {
		return w.path
	}
	return PeriodPath(w.cfg.Path, w.cfg.Interval, w.cfg.Now())
}

// Close 关闭当前文件，可重复调用
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.current == nil {
		return nil
	}
	return w.current.Close()
}
