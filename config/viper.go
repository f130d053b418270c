package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ceyewan/logkit/clog"
	"github.com/ceyewan/logkit/logplan"
	"github.com/ceyewan/logkit/xerrors"
)

// loader 实现 Loader 接口
type loader struct {
	v         *viper.Viper
	cfg       *Config
	logger    clog.Logger
	mu        sync.RWMutex
	watches   map[string][]chan Event
	oldValues map[string]any
	watching  bool
}

// newLoader 创建一个新的配置加载器（内部使用）
func newLoader(cfg *Config) *loader {
	return &loader{
		v:         viper.New(),
		cfg:       cfg,
		logger:    cfg.logger.WithNamespace("config"),
		watches:   make(map[string][]chan Event),
		oldValues: make(map[string]any),
	}
}

// Load 初始化并从所有来源加载配置
func (l *loader) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// 1. 配置 Viper
	l.v.SetConfigName(l.cfg.Name)
	l.v.SetConfigType(l.cfg.FileType)
	for _, path := range l.cfg.Paths {
		l.v.AddConfigPath(path)
	}

	// 2. 加载基础配置（最低优先级）
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return WrapLoadError(err, l.cfg.Name)
		}
		l.logger.Debug("no configuration file found, continuing with environment only",
			clog.String("name", l.cfg.Name),
			clog.Any("paths", l.cfg.Paths))
	}

	// 3. 加载环境特定配置（中等优先级）
	if err := l.loadEnvironmentConfig(); err != nil {
		return err
	}

	// 4. 加载 .env 文件，不覆盖已有的进程环境变量
	l.loadDotEnv()

	// 5. 环境变量（最高优先级）
	l.applyEnvironment()

	// 6. 保存当前值作为基线
	l.captureCurrentValues()

	// 7. 存在配置文件时启动文件监听
	if l.v.ConfigFileUsed() != "" && !l.watching {
		l.watching = true
		l.v.OnConfigChange(func(e fsnotify.Event) {
			if err := l.loadEnvironmentConfig(); err != nil {
				l.logger.Warn("failed to reload environment config", clog.Error(err))
			}
			l.notifyWatches(e)
		})
		l.v.WatchConfig()
	}

	return nil
}

// loadDotEnv 从当前目录和各搜索路径加载 .env 文件
func (l *loader) loadDotEnv() {
	candidates := []string{".env"}
	for _, path := range l.cfg.Paths {
		candidates = append(candidates, filepath.Join(path, ".env"))
	}

	seen := make(map[string]bool, len(candidates))
	for _, file := range candidates {
		abs, err := filepath.Abs(file)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true

		if _, err := os.Stat(abs); err != nil {
			continue
		}
		if err := godotenv.Load(abs); err != nil {
			l.logger.Warn("failed to load .env file", clog.String("file", abs), clog.Error(err))
		}
	}
}

// envName 返回选择环境特定配置的环境变量名
func (l *loader) envName() string {
	if l.cfg.EnvPrefix != "" {
		return strings.ToUpper(l.cfg.EnvPrefix) + "_ENV"
	}
	return "APP_ENV"
}

// loadEnvironmentConfig 合并 <name>.<env> 配置文件
func (l *loader) loadEnvironmentConfig() error {
	env := os.Getenv(l.envName())
	if env == "" {
		return nil
	}

	originalName := l.cfg.Name
	envConfigName := fmt.Sprintf("%s.%s", l.cfg.Name, env)
	l.v.SetConfigName(envConfigName)
	defer l.v.SetConfigName(originalName)

	if err := l.v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return WrapLoadError(err, envConfigName)
		}
		l.logger.Debug("no environment configuration file found", clog.String("env", env))
		return nil
	}
	l.logger.Info("loaded environment configuration", clog.String("env", env))
	return nil
}

// applyEnvironment 把双下划线分层的环境变量写入最高优先级层
func (l *loader) applyEnvironment() {
	for key, value := range environmentOverrides(os.Environ(), l.cfg.EnvPrefix) {
		l.v.Set(key, value)
	}
}

// captureCurrentValues 保存当前配置值用于变更检测
func (l *loader) captureCurrentValues() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key := range l.watches {
		l.oldValues[key] = l.v.Get(key)
	}
}

// Get 根据 key 获取配置值
func (l *loader) Get(key string) any {
	return l.v.Get(key)
}

// Unmarshal 将整个配置反序列化到结构体
func (l *loader) Unmarshal(v any) error {
	return l.v.Unmarshal(v)
}

// UnmarshalKey 将特定配置 key 反序列化到结构体
func (l *loader) UnmarshalKey(key string, v any) error {
	return l.v.UnmarshalKey(key, v)
}

// Section 返回配置节视图
//
// 视图按完整路径逐键读取，因此文件中的键和环境变量中的键会正确合并，
// 而 viper.Sub 只会返回优先级最高的那一层。
func (l *loader) Section(name string) (logplan.Section, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || !l.v.IsSet(key) {
		return nil, false
	}
	return &section{v: l.v, prefix: key}, true
}

// Watch 订阅特定配置 key 的变更
func (l *loader) Watch(ctx context.Context, key string) (<-chan Event, error) {
	if strings.TrimSpace(key) == "" {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "config: watch key is empty")
	}
	key = strings.ToLower(key)

	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Event, 10)
	l.watches[key] = append(l.watches[key], ch)
	l.oldValues[key] = l.v.Get(key)

	go func() {
		<-ctx.Done()
		l.removeWatch(key, ch)
	}()

	return ch, nil
}

// removeWatch 从注册表中移除监听通道并关闭
func (l *loader) removeWatch(key string, ch chan Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if chans, ok := l.watches[key]; ok {
		for i, c := range chans {
			if c == ch {
				l.watches[key] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(l.watches[key]) == 0 {
			delete(l.watches, key)
			delete(l.oldValues, key)
		}
	}
	close(ch)
}

// Validate 检查日志相关配置节
func (l *loader) Validate() error {
	var errs []error

	if s, ok := l.Section(logplan.RemoteSectionKey); ok {
		if endpoint, ok := s.Lookup("Endpoint"); ok && strings.TrimSpace(endpoint) != "" {
			if err := validateEndpoint(endpoint); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if s, ok := l.Section(LoggingSectionKey); ok {
		for _, key := range s.Keys() {
			if key != "minimumlevel" && !strings.HasPrefix(key, "override.") {
				continue
			}
			value, _ := s.Lookup(key)
			if !isKnownLevel(value) {
				errs = append(errs, xerrors.Wrapf(ErrValidationFailed,
					"%s.%s: unknown level %q, Information will be used", LoggingSectionKey, key, value))
			}
		}
	}

	return xerrors.Combine(errs...)
}

// notifyWatches 通知所有监听者
func (l *loader) notifyWatches(_ fsnotify.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, channels := range l.watches {
		newValue := l.v.Get(key)
		oldValue := l.oldValues[key]

		if reflect.DeepEqual(oldValue, newValue) {
			continue
		}

		event := Event{
			Key:       key,
			Value:     newValue,
			OldValue:  oldValue,
			Source:    "file",
			Timestamp: time.Now(),
		}
		l.oldValues[key] = newValue

		for _, ch := range channels {
			select {
			case ch <- event:
			default:
				l.logger.Warn("watch channel is full, event dropped", clog.String("key", key))
			}
		}
	}
}

// section 是 viper 上的一个配置节视图
type section struct {
	v      *viper.Viper
	prefix string
}

func (s *section) Lookup(key string) (string, bool) {
	full := s.prefix + "." + strings.ToLower(key)
	if !s.v.IsSet(full) {
		return "", false
	}
	return s.v.GetString(full), true
}

func (s *section) Keys() []string {
	var keys []string
	prefix := s.prefix + "."
	for _, k := range s.v.AllKeys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(keys)
	return keys
}
