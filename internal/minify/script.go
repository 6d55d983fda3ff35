package minify

import (
	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"

	"github.com/any-hub/asset-hub/internal/media"
)

const scriptMediaType = "application/javascript"

// NewScript 返回基于 tdewolff/minify 的整程序 JS 压缩函数。
// 解析失败会原样返回错误，调用方不得回退到未压缩内容。
func NewScript() media.Transform {
	m := tdminify.New()
	m.AddFunc(scriptMediaType, js.Minify)
	return func(src string) (string, error) {
		return m.String(scriptMediaType, src)
	}
}
