package cache

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// BodyCache 以内容摘要为键缓存已编码（如 gzip）的响应正文，避免重复高等级压缩。
// nil *BodyCache 表示禁用，所有方法均安全返回未命中。
type BodyCache struct {
	c *ristretto.Cache
}

// NewBodyCache 创建容量为 maxCost 字节的内存缓存。
func NewBodyCache(maxCost int64) (*BodyCache, error) {
	if maxCost <= 0 {
		return nil, errors.New("body cache size must be positive")
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters(maxCost),
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create body cache: %w", err)
	}
	return &BodyCache{c: c}, nil
}

// numCounters 按平均 4KiB 一个条目估算，计数器取条目数的 10 倍。
func numCounters(maxCost int64) int64 {
	items := maxCost / 4096
	if items < 100 {
		items = 100
	}
	return items * 10
}

// Get 返回 encoding 下与 (digest, size) 对应的正文。
func (b *BodyCache) Get(encoding string, digest uint64, size int) ([]byte, bool) {
	if b == nil {
		return nil, false
	}
	value, ok := b.c.Get(bodyKey(encoding, digest, size))
	if !ok {
		return nil, false
	}
	body, ok := value.([]byte)
	return body, ok
}

// Set 异步写入，容量不足时 ristretto 可能拒绝。
func (b *BodyCache) Set(encoding string, digest uint64, size int, body []byte) bool {
	if b == nil {
		return false
	}
	return b.c.Set(bodyKey(encoding, digest, size), body, int64(len(body)))
}

// Wait blocks until buffered writes are applied.
func (b *BodyCache) Wait() {
	if b == nil {
		return
	}
	b.c.Wait()
}

// Close releases the underlying cache.
func (b *BodyCache) Close() {
	if b == nil {
		return
	}
	b.c.Close()
}

func bodyKey(encoding string, digest uint64, size int) string {
	return fmt.Sprintf("%s:%016x:%d", encoding, digest, size)
}
