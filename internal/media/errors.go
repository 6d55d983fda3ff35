package media

import (
	"errors"
	"fmt"
)

// SourceReadError 表示清单中的某个源文件缺失或不可读。
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read source %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// TransformError 表示压缩函数拒绝了输入。Path 为空代表整体合并后的内容。
type TransformError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *TransformError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("transform %s bundle: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("transform %s source %s: %v", e.Kind, e.Path, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// WrapSourceError 保证读取失败总是以 *SourceReadError 形式向上传递。
func WrapSourceError(path string, err error) error {
	var sourceErr *SourceReadError
	if errors.As(err, &sourceErr) {
		return err
	}
	return &SourceReadError{Path: path, Err: err}
}
