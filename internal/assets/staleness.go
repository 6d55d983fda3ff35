package assets

import (
	"errors"
	"time"

	"github.com/spf13/afero"

	"github.com/any-hub/asset-hub/internal/media"
)

var errSourceIsDirectory = errors.New("source is a directory")

// SourceFile 记录一个源文件及其最后修改时间。
type SourceFile struct {
	Path    string
	ModTime time.Time
}

// NeedsRegeneration 判断缓存产物是否需要重新生成：
// 产物不存在，或任一源文件晚于 cachedAt 修改且不晚于 now。
// 修改时间在未来的源文件被忽略，避免时钟漂移导致每个请求都重新生成。
func NeedsRegeneration(cachedAt time.Time, exists bool, sources []SourceFile, now time.Time) bool {
	if !exists {
		return true
	}
	for _, source := range sources {
		if source.ModTime.After(cachedAt) && !source.ModTime.After(now) {
			return true
		}
	}
	return false
}

// statSources 读取全部源文件的修改时间，任何缺失都视为致命错误。
func statSources(fsys afero.Fs, files []string) ([]SourceFile, error) {
	sources := make([]SourceFile, 0, len(files))
	for _, file := range files {
		info, err := fsys.Stat(file)
		if err != nil {
			return nil, &media.SourceReadError{Path: file, Err: err}
		}
		if info.IsDir() {
			return nil, &media.SourceReadError{Path: file, Err: errSourceIsDirectory}
		}
		sources = append(sources, SourceFile{Path: file, ModTime: info.ModTime()})
	}
	return sources, nil
}
