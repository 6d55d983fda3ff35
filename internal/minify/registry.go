// Package minify 提供按资源类型注册的压缩函数，以及内置的 CSS/JS 实现。
package minify

import (
	"errors"
	"strings"
	"sync"

	"github.com/any-hub/asset-hub/internal/media"
)

// ErrDuplicateTransform indicates a media kind already has a transform registered.
var ErrDuplicateTransform = errors.New("transform already registered")

// Registry 保存 media kind → Transform 的映射，可被多个请求并发读取。
type Registry struct {
	transforms sync.Map
}

// NewRegistry 返回空注册表，测试可按需注入自定义 Transform。
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry 注册内置的样式与脚本压缩函数。
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(media.KindStyle, Style)
	r.MustRegister(media.KindScript, NewScript())
	return r
}

// Register stores the transform for the given kind.
func (r *Registry) Register(kind media.Kind, transform media.Transform) error {
	key := normalizeKind(string(kind))
	if key == "" {
		return errors.New("media kind required")
	}
	if transform == nil {
		return errors.New("transform required")
	}
	if _, loaded := r.transforms.LoadOrStore(key, transform); loaded {
		return ErrDuplicateTransform
	}
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(kind media.Kind, transform media.Transform) {
	if err := r.Register(kind, transform); err != nil {
		panic(err)
	}
}

// Fetch retrieves the transform associated with a kind.
func (r *Registry) Fetch(kind media.Kind) (media.Transform, bool) {
	key := normalizeKind(string(kind))
	if key == "" {
		return nil, false
	}
	if value, ok := r.transforms.Load(key); ok {
		if transform, ok := value.(media.Transform); ok {
			return transform, true
		}
	}
	return nil, false
}

// Status returns transform registration status for a kind.
func (r *Registry) Status(kind media.Kind) string {
	if _, ok := r.Fetch(kind); ok {
		return "registered"
	}
	return "missing"
}

// Snapshot returns status for a list of kinds.
func (r *Registry) Snapshot(kinds []string) map[string]string {
	out := make(map[string]string, len(kinds))
	for _, kind := range kinds {
		if normalized := normalizeKind(kind); normalized != "" {
			out[normalized] = r.Status(media.Kind(normalized))
		}
	}
	return out
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
