// Package style 描述 CSS 资源的合并策略：先拼接全部原文，再整体压缩一次。
package style

import (
	"bytes"

	"github.com/any-hub/asset-hub/internal/media"
)

const (
	contentType = "text/css"
	// charsetPrefix 仅在响应时拼接，不进入缓存。
	charsetPrefix = `@charset="utf-8";`
)

// 跨文件的规则可能在拼接后才完整，因此压缩必须作用于整体。
func init() {
	media.MustRegister(media.Metadata{
		Kind:        media.KindStyle,
		Description: "Concatenated stylesheets minified as a single document",
		ContentType: contentType,
		BodyPrefix:  charsetPrefix,
		Combiner:    media.CombinerFunc(Combine),
	})
}

// Combine 拼接所有文件的原始内容后调用一次 transform。
func Combine(files []string, read media.SourceReader, transform media.Transform) ([]byte, error) {
	var raw bytes.Buffer
	for _, file := range files {
		content, err := read(file)
		if err != nil {
			return nil, media.WrapSourceError(file, err)
		}
		raw.Write(content)
	}

	minified, err := transform(raw.String())
	if err != nil {
		return nil, &media.TransformError{Kind: media.KindStyle, Err: err}
	}
	return []byte(minified), nil
}
