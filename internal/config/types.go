package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述全局运行时行为，所有 Bundle 共享同一份参数。
type GlobalConfig struct {
	ListenPort    int    `mapstructure:"ListenPort"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
	StoragePath   string `mapstructure:"StoragePath"`
	// ServeGzip 为 false 时始终返回未压缩正文。
	ServeGzip bool `mapstructure:"ServeGzip"`
	// NegotiateGzip 为 true 时按 Accept-Encoding 决定是否压缩。
	NegotiateGzip bool `mapstructure:"NegotiateGzip"`
	// KeyScheme 取 joined 或 digest，见 cache.KeyScheme。
	KeyScheme string `mapstructure:"KeyScheme"`
	// MaxMemoryCache 是 gzip 正文内存缓存的容量（字节），0 表示关闭。
	MaxMemoryCache int64    `mapstructure:"MaxMemoryCacheSize"`
	ReadTimeout    Duration `mapstructure:"ReadTimeout"`
	WriteTimeout   Duration `mapstructure:"WriteTimeout"`
}

// BundleConfig 声明一个具名的合并产物：类型 + 有序文件列表。
type BundleConfig struct {
	Name  string   `mapstructure:"Name"`
	Type  string   `mapstructure:"Type"`
	Files []string `mapstructure:"Files"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global  GlobalConfig   `mapstructure:",squash"`
	Bundles []BundleConfig `mapstructure:"Bundle"`
}

// BundleNames 返回所有 Bundle 的 name:type 摘要，供启动日志使用。
func BundleNames(bundles []BundleConfig) []string {
	if len(bundles) == 0 {
		return nil
	}
	result := make([]string, len(bundles))
	for i, bundle := range bundles {
		result[i] = fmt.Sprintf("%s:%s", bundle.Name, bundle.Type)
	}
	return result
}
