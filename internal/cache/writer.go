package cache

import (
	"bytes"
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable 表示当前服务未注入缓存存储实例。
var ErrStoreUnavailable = errors.New("cache store unavailable")

// GenerationWriter 封装 Store.Put，并用注入的时钟标记产物生成时间。
type GenerationWriter struct {
	store Store
	now   func() time.Time
}

// NewGenerationWriter 构造写入器，now 为空时使用 time.Now。
func NewGenerationWriter(store Store, now func() time.Time) GenerationWriter {
	if now == nil {
		now = time.Now
	}
	return GenerationWriter{
		store: store,
		now:   now,
	}
}

// Write 无条件覆盖写入 body，返回带新生成时间的 Entry。
func (w GenerationWriter) Write(ctx context.Context, locator Locator, body []byte) (*Entry, error) {
	if w.store == nil {
		return nil, ErrStoreUnavailable
	}
	return w.store.Put(ctx, locator, bytes.NewReader(body), PutOptions{ModTime: w.now().UTC()})
}
