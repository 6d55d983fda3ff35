package server

import (
	"errors"
	"fmt"

	"github.com/any-hub/asset-hub/internal/cache"
	"github.com/any-hub/asset-hub/internal/config"
	"github.com/any-hub/asset-hub/internal/media"
)

// BundleRoute 将 Bundle 配置与派生属性（类型元数据、缓存键）聚合在一起，
// 供处理层直接复用，避免每个请求重复计算。
type BundleRoute struct {
	// Config 是用户在 config.toml 中声明的 Bundle 字段副本，Files 已解析为绝对路径。
	Config config.BundleConfig
	// Kind/Media 记录该 Bundle 对应的资源类型及其策略。
	Kind  media.Kind
	Media media.Metadata
	// CacheKey 按全局 KeyScheme 预先计算。
	CacheKey string
}

// Files 返回文件列表副本。
func (r BundleRoute) Files() []string {
	return append([]string(nil), r.Config.Files...)
}

// Locator 返回该 Bundle 在缓存中的定位。
func (r BundleRoute) Locator() cache.Locator {
	return cache.Locator{Kind: string(r.Kind), Key: r.CacheKey}
}

// BundleRegistry 提供名称到 BundleRoute 的查询能力。
type BundleRegistry struct {
	scheme  cache.KeyScheme
	routes  map[string]*BundleRoute
	ordered []*BundleRoute
}

// NewBundleRegistry 根据配置构建名称映射。调用方应在启动阶段创建一次并复用。
func NewBundleRegistry(cfg *config.Config) (*BundleRegistry, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	scheme, err := cache.ParseKeyScheme(cfg.Global.KeyScheme)
	if err != nil {
		return nil, err
	}

	registry := &BundleRegistry{
		scheme: scheme,
		routes: make(map[string]*BundleRoute, len(cfg.Bundles)),
	}

	for _, bundle := range cfg.Bundles {
		if _, exists := registry.routes[bundle.Name]; exists {
			return nil, fmt.Errorf("duplicate bundle name detected: %s", bundle.Name)
		}

		route, err := buildBundleRoute(scheme, bundle)
		if err != nil {
			return nil, err
		}

		registry.routes[bundle.Name] = route
		registry.ordered = append(registry.ordered, route)
	}

	return registry, nil
}

// Lookup 根据名称查找 BundleRoute，名称区分大小写。
func (r *BundleRegistry) Lookup(name string) (*BundleRoute, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	route, ok := r.routes[name]
	return route, ok
}

// List 返回当前注册的 BundleRoute 列表（按配置定义的顺序），用于诊断输出。
func (r *BundleRegistry) List() []BundleRoute {
	if r == nil || len(r.ordered) == 0 {
		return nil
	}

	result := make([]BundleRoute, len(r.ordered))
	for i, route := range r.ordered {
		result[i] = *route
	}
	return result
}

// KeyScheme 返回构建时使用的缓存键方案。
func (r *BundleRegistry) KeyScheme() cache.KeyScheme {
	if r == nil {
		return cache.KeySchemeJoined
	}
	return r.scheme
}

func buildBundleRoute(scheme cache.KeyScheme, bundle config.BundleConfig) (*BundleRoute, error) {
	meta, ok := media.Resolve(bundle.Type)
	if !ok {
		return nil, fmt.Errorf("bundle %s: unsupported type %s", bundle.Name, bundle.Type)
	}
	if len(bundle.Files) == 0 {
		return nil, fmt.Errorf("bundle %s: no files", bundle.Name)
	}

	copied := bundle
	copied.Files = append([]string(nil), bundle.Files...)

	return &BundleRoute{
		Config:   copied,
		Kind:     meta.Kind,
		Media:    meta,
		CacheKey: scheme.Key(copied.Files, string(meta.Kind)),
	}, nil
}
