package media

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var globalRegistry = newRegistry()

type registry struct {
	mu    sync.RWMutex
	kinds map[Kind]Metadata
}

func newRegistry() *registry {
	return &registry{kinds: make(map[Kind]Metadata)}
}

// Register 将类型元数据加入全局注册表，重复键会返回错误。
func Register(meta Metadata) error {
	return globalRegistry.register(meta)
}

// MustRegister 在注册失败时 panic，适合 init() 中调用。
func MustRegister(meta Metadata) {
	if err := Register(meta); err != nil {
		panic(err)
	}
}

// Resolve 返回指定类型的元数据，大小写不敏感。
func Resolve(kind string) (Metadata, bool) {
	return globalRegistry.resolve(kind)
}

// List 返回按键排序的类型元数据列表。
func List() []Metadata {
	return globalRegistry.list()
}

// Keys 返回所有已注册类型的键值，供配置校验或诊断使用。
func Keys() []string {
	items := List()
	result := make([]string, len(items))
	for i, meta := range items {
		result[i] = string(meta.Kind)
	}
	return result
}

func normalizeKind(kind string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(kind)))
}

func (r *registry) register(meta Metadata) error {
	key := normalizeKind(string(meta.Kind))
	if key == "" {
		return fmt.Errorf("media kind is required")
	}
	if meta.Combiner == nil {
		return fmt.Errorf("media kind %s: combiner is required", key)
	}
	if meta.ContentType == "" {
		return fmt.Errorf("media kind %s: content type is required", key)
	}
	meta.Kind = key

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[key]; exists {
		return fmt.Errorf("media kind %s already registered", key)
	}
	r.kinds[key] = meta
	return nil
}

func (r *registry) resolve(kind string) (Metadata, bool) {
	key := normalizeKind(kind)
	if key == "" {
		return Metadata{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.kinds[key]
	return meta, ok
}

func (r *registry) list() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.kinds) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.kinds))
	for key := range r.kinds {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	result := make([]Metadata, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.kinds[Kind(key)])
	}
	return result
}
