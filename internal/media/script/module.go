// Package script 描述 JavaScript 资源的合并策略：逐文件去 BOM、逐文件压缩、再拼接。
package script

import (
	"bytes"
	"strings"

	"github.com/any-hub/asset-hub/internal/media"
)

const contentType = "application/javascript"

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// 每个文件独立压缩，单个文件语法错误不会波及其它片段的压缩结果。
func init() {
	media.MustRegister(media.Metadata{
		Kind:        media.KindScript,
		Description: "Per-file minified JavaScript joined with source separator comments",
		ContentType: contentType,
		Combiner:    media.CombinerFunc(Combine),
	})
}

// StripBOM 去掉开头的 UTF-8 BOM，对不含 BOM 的内容是幂等的。
func StripBOM(raw []byte) []byte {
	return bytes.TrimPrefix(raw, utf8BOM)
}

// Combine 按顺序读取、压缩并拼接脚本，每段前附带 /*path*/ 分隔注释。
func Combine(files []string, read media.SourceReader, transform media.Transform) ([]byte, error) {
	var out bytes.Buffer
	for _, file := range files {
		raw, err := read(file)
		if err != nil {
			return nil, media.WrapSourceError(file, err)
		}
		minified, err := transform(string(StripBOM(raw)))
		if err != nil {
			return nil, &media.TransformError{Kind: media.KindScript, Path: file, Err: err}
		}
		out.WriteString("\n\n/*")
		out.WriteString(separatorLabel(file))
		out.WriteString("*/\n")
		out.WriteString(minified)
	}
	return out.Bytes(), nil
}

// separatorLabel 防止路径中的 "*/" 提前闭合分隔注释。
func separatorLabel(file string) string {
	return strings.ReplaceAll(file, "*/", "*\\/")
}
