package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
// Bundle 中的相对文件路径以配置文件所在目录为基准解析为绝对路径。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	if err := rejectSingularFileKey(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Bundles {
		applyBundleDefaults(&cfg.Bundles[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absConfig, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("无法解析配置路径: %w", err)
	}
	baseDir := filepath.Dir(absConfig)
	for i := range cfg.Bundles {
		cfg.Bundles[i].Files = resolveFiles(baseDir, cfg.Bundles[i].Files)
	}

	absStorage, err := filepath.Abs(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Global.StoragePath = absStorage

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("StoragePath", "./storage")
	v.SetDefault("ServeGzip", true)
	v.SetDefault("NegotiateGzip", false)
	v.SetDefault("KeyScheme", "joined")
	v.SetDefault("MaxMemoryCacheSize", 64*1024*1024)
	v.SetDefault("ReadTimeout", "30s")
	v.SetDefault("WriteTimeout", "30s")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	if strings.TrimSpace(g.KeyScheme) == "" {
		g.KeyScheme = "joined"
	}
	if g.ReadTimeout.DurationValue() == 0 {
		g.ReadTimeout = Duration(30 * time.Second)
	}
	if g.WriteTimeout.DurationValue() == 0 {
		g.WriteTimeout = Duration(30 * time.Second)
	}
}

func applyBundleDefaults(b *BundleConfig) {
	b.Name = strings.TrimSpace(b.Name)
	b.Type = strings.ToLower(strings.TrimSpace(b.Type))
	for i, file := range b.Files {
		b.Files[i] = strings.TrimSpace(file)
	}
}

// resolveFiles 保留顺序与重复项，仅把相对路径转换为绝对路径。
func resolveFiles(baseDir string, files []string) []string {
	resolved := make([]string, len(files))
	for i, file := range files {
		if filepath.IsAbs(file) {
			resolved[i] = filepath.Clean(file)
			continue
		}
		resolved[i] = filepath.Join(baseDir, file)
	}
	return resolved
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// rejectSingularFileKey 拦截常见笔误 File = "..."，否则该 Bundle 会因 Files 为空而报错且原因不明显。
func rejectSingularFileKey(v *viper.Viper) error {
	raw := v.Get("Bundle")
	bundles, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	for idx, entry := range bundles {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if _, exists := lookupKey(m, "File"); exists {
			name := fmt.Sprintf("#%d", idx)
			if rawName, ok := lookupKey(m, "Name"); ok {
				if s, ok := rawName.(string); ok && s != "" {
					name = s
				}
			}
			return newFieldError(bundleField(name, "File"), "未知字段，请使用 Files 数组")
		}
	}

	return nil
}

// lookupKey 忽略大小写查找，viper 读取 TOML 后键名会被转为小写。
func lookupKey(m map[string]interface{}, key string) (interface{}, bool) {
	for k, value := range m {
		if strings.EqualFold(k, key) {
			return value, true
		}
	}
	return nil, false
}
