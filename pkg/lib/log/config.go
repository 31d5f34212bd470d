package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Format 日志输出格式
type Format int

const (
	// FormatText 文本格式（默认）
	FormatText Format = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// 环境变量名
const (
	EnvLevel  = "SMARTNODE_LOG_LEVEL"
	EnvFormat = "SMARTNODE_LOG_FORMAT"
)

// levelConfig 组件级别配置
type levelConfig struct {
	mu         sync.RWMutex
	defaultLvl slog.Level
	components map[string]slog.Level
	format     Format
}

var (
	cfgOnce  sync.Once
	cfgCache *levelConfig
)

func currentConfig() *levelConfig {
	cfgOnce.Do(func() {
		cfgCache = parseConfig(os.Getenv(EnvLevel), os.Getenv(EnvFormat))
	})
	return cfgCache
}

// parseConfig 解析级别与格式
//
// 级别格式: component=level,component=level,defaultLevel
func parseConfig(levelStr, formatStr string) *levelConfig {
	cfg := &levelConfig{
		defaultLvl: slog.LevelInfo,
		components: make(map[string]slog.Level),
	}
	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if comp, lvl, ok := strings.Cut(part, "="); ok {
			if level, ok := ParseLevel(lvl); ok {
				cfg.components[strings.TrimSpace(comp)] = level
			}
			continue
		}
		if level, ok := ParseLevel(part); ok {
			cfg.defaultLvl = level
		}
	}
	if strings.EqualFold(strings.TrimSpace(formatStr), "json") {
		cfg.format = FormatJSON
	}
	return cfg
}

// levelFor 返回组件的生效级别
//
// 组件名按 "/" 分层，未精确配置时回退到最近的上级前缀，
// 例如 "core/transport/tcp" 会继承 "core/transport" 的配置。
func (c *levelConfig) levelFor(component string) slog.Level {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for name := component; name != ""; {
		if level, ok := c.components[name]; ok {
			return level
		}
		idx := strings.LastIndex(name, "/")
		if idx < 0 {
			break
		}
		name = name[:idx]
	}
	return c.defaultLvl
}

func (c *levelConfig) setDefault(level slog.Level) {
	c.mu.Lock()
	c.defaultLvl = level
	c.mu.Unlock()
}

// SetComponentLevel 设置单个组件的级别
func SetComponentLevel(component string, level slog.Level) {
	cfg := currentConfig()
	cfg.mu.Lock()
	cfg.components[component] = level
	cfg.mu.Unlock()
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
