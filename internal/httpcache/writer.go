// Package httpcache emits Last-Modified/ETag validators for generated assets
// and answers conditional requests with 304 Not Modified.
package httpcache

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gofiber/fiber/v3"
)

// Writer 根据资源的最后修改时间输出校验头，并判断客户端缓存是否仍然有效。
type Writer struct{}

// NewWriter returns a conditional header writer.
func NewWriter() Writer {
	return Writer{}
}

// Apply 写入 Last-Modified 与 ETag。override 非零时代替 modTime 作为时间戳。
// 返回 true 表示已设置 304，调用方必须立即结束处理且不写正文。
//
// ETag 使用纳秒精度，同一秒内的两次生成会得到不同的 ETag；Last-Modified 只有秒级精度，
// 仅携带 If-Modified-Since 的客户端在同一秒内重新生成后仍可能收到 304。
func (Writer) Apply(c fiber.Ctx, resource string, modTime, override time.Time) bool {
	ts := modTime
	if !override.IsZero() {
		ts = override
	}
	ts = ts.UTC()
	etag := ETag(resource, ts)
	lastModified := ts.Truncate(time.Second)

	c.Set(fiber.HeaderLastModified, lastModified.Format(http.TimeFormat))
	c.Set(fiber.HeaderETag, etag)

	if !NotModified(c.Get(fiber.HeaderIfNoneMatch), c.Get(fiber.HeaderIfModifiedSince), etag, lastModified) {
		return false
	}
	c.Status(fiber.StatusNotModified)
	return true
}

// Clear 移除 Apply 写入的校验头，用于后续步骤失败时返回错误响应。
func (Writer) Clear(c fiber.Ctx) {
	c.Response().Header.Del(fiber.HeaderLastModified)
	c.Response().Header.Del(fiber.HeaderETag)
}

// ETag 由资源标识与纳秒级时间戳派生，同一生成时间的同一资源总是得到相同的值。
func ETag(resource string, ts time.Time) string {
	sum := xxhash.Sum64String(resource + "|" + strconv.FormatInt(ts.UnixNano(), 10))
	return fmt.Sprintf(`"%016x"`, sum)
}

// NotModified 按 RFC 7232 判断：存在 If-None-Match 时只看 ETag，否则比较 If-Modified-Since。
func NotModified(ifNoneMatch, ifModifiedSince, etag string, lastModified time.Time) bool {
	if strings.TrimSpace(ifNoneMatch) != "" {
		return etagMatches(ifNoneMatch, etag)
	}
	if ifModifiedSince == "" {
		return false
	}
	since, err := http.ParseTime(ifModifiedSince)
	if err != nil {
		return false
	}
	return !lastModified.Truncate(time.Second).After(since)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}
