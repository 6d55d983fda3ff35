package assets

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/asset-hub/internal/cache"
	"github.com/any-hub/asset-hub/internal/media"
)

var (
	// ErrNoFiles 表示请求未包含任何源文件。
	ErrNoFiles = errors.New("asset request has no files")
	// ErrUnsupportedKind 表示资源类型未注册或缺少压缩函数。
	ErrUnsupportedKind = errors.New("unsupported media kind")
)

// CacheIOError 表示缓存条目的 stat/读/写失败。
type CacheIOError struct {
	Op      string
	Locator cache.Locator
	Err     error
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache %s %s/%s: %v", e.Op, e.Locator.Kind, e.Locator.Key, e.Err)
}

func (e *CacheIOError) Unwrap() error {
	return e.Err
}

// errorResponse 将错误映射为 HTTP 状态码与 JSON error 字段。
func errorResponse(err error) (int, string) {
	var (
		sourceErr    *media.SourceReadError
		transformErr *media.TransformError
		cacheErr     *CacheIOError
	)
	switch {
	case errors.Is(err, ErrNoFiles):
		return fiber.StatusBadRequest, "files_required"
	case errors.Is(err, ErrUnsupportedKind):
		return fiber.StatusBadRequest, "unsupported_kind"
	case errors.As(err, &sourceErr):
		return fiber.StatusInternalServerError, "source_read_failed"
	case errors.As(err, &transformErr):
		return fiber.StatusInternalServerError, "transform_failed"
	case errors.As(err, &cacheErr):
		return fiber.StatusInternalServerError, "cache_io_failed"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}
