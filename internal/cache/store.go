package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// Store 负责管理磁盘缓存的读写。磁盘布局遵循：
//
//	<StoragePath>/<Kind>/<sha256(Key)>.<Kind>    # 合并后的产物
//
// 每个条目仅由正文文件组成，文件的 ModTime 即产物的生成时间。
type Store interface {
	// Filename 返回条目对应的绝对路径，不访问磁盘。
	Filename(locator Locator) (string, error)

	// Stat 返回条目的元信息。若不存在则返回 ErrNotFound。
	Stat(ctx context.Context, locator Locator) (*Entry, error)

	// Get 返回一个可流式读取的缓存条目。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, locator Locator) (*ReadResult, error)

	// Put 覆盖写入条目。实现需通过临时文件 + rename 保证写入原子性，并在失败时清理临时文件；
	// 写入后根据 opts.ModTime 设置文件时间戳。
	Put(ctx context.Context, locator Locator, body io.Reader, opts PutOptions) (*Entry, error)
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	ModTime time.Time
}

// Locator 唯一定位一个缓存条目（资源类型 + 缓存键）。
type Locator struct {
	Kind string
	Key  string
}

// Entry 描述一个缓存条目，包含绝对文件路径及文件信息。
type Entry struct {
	Locator   Locator   `json:"locator"`
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// ReadResult 组合 Entry 与正文 Reader。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadSeekCloser
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("cache entry not found")
