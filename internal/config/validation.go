package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/any-hub/asset-hub/internal/cache"
	"github.com/any-hub/asset-hub/internal/media"
)

// bundleNamePattern 限制名称可直接出现在 URL 路径段中。
var bundleNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.StoragePath == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}
	if g.MaxMemoryCache < 0 {
		return newFieldError("Global.MaxMemoryCacheSize", "不能为负数")
	}
	if _, err := cache.ParseKeyScheme(g.KeyScheme); err != nil {
		return newFieldError("Global.KeyScheme", "仅支持 joined|digest")
	}
	if g.ReadTimeout.DurationValue() < 0 {
		return newFieldError("Global.ReadTimeout", "不能为负数")
	}
	if g.WriteTimeout.DurationValue() < 0 {
		return newFieldError("Global.WriteTimeout", "不能为负数")
	}

	if len(c.Bundles) == 0 {
		return errors.New("至少需要配置一个 Bundle")
	}

	seenNames := map[string]struct{}{}
	for i := range c.Bundles {
		bundle := &c.Bundles[i]
		if bundle.Name == "" {
			return newFieldError("Bundle[].Name", "不能为空")
		}
		if !bundleNamePattern.MatchString(bundle.Name) {
			return newFieldError(bundleField(bundle.Name, "Name"), "仅允许字母、数字、点、下划线与连字符")
		}
		if _, exists := seenNames[bundle.Name]; exists {
			return newFieldError(bundleField(bundle.Name, "Name"), "重复")
		}
		seenNames[bundle.Name] = struct{}{}

		normalizedType := strings.ToLower(strings.TrimSpace(bundle.Type))
		if normalizedType == "" {
			return newFieldError(bundleField(bundle.Name, "Type"), "不能为空")
		}
		meta, ok := media.Resolve(normalizedType)
		if !ok {
			return newFieldError(bundleField(bundle.Name, "Type"), fmt.Sprintf("仅支持 %s", strings.Join(media.Keys(), "|")))
		}
		bundle.Type = string(meta.Kind)

		if len(bundle.Files) == 0 {
			return newFieldError(bundleField(bundle.Name, "Files"), "至少需要一个文件")
		}
		for idx, file := range bundle.Files {
			if strings.TrimSpace(file) == "" {
				return newFieldError(bundleField(bundle.Name, fmt.Sprintf("Files[%d]", idx)), "不能为空")
			}
		}
	}

	return nil
}
