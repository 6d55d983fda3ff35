package minify

import (
	"regexp"
	"strings"
)

var (
	zeroPxPattern  = regexp.MustCompile(`([^0-9])0px`)
	commentPattern = regexp.MustCompile(`/\*.*?\*/`)
)

// Style 对合并后的 CSS 做轻量压缩：缩写十六进制颜色、0px → 0、去注释并裁剪首尾空白。
// 注释只在单行内匹配，跨行注释原样保留。不重排选择器或规则体。
func Style(css string) (string, error) {
	css = collapseHexColors(css)
	css = zeroPxPattern.ReplaceAllString(css, "${1}0")
	css = commentPattern.ReplaceAllString(css, "")
	return strings.Trim(css, " \t\n\r\x00\x0b"), nil
}

// collapseHexColors 将 #aabbcc 缩写为 #abc。前一字节不能是 '='，后一字节必须是空白、';' 或 '}'。
// 逐字节扫描，匹配失败时只前进一个字节，保证相邻颜色仍有机会命中。
func collapseHexColors(css string) string {
	var b strings.Builder
	b.Grow(len(css))

	for i := 0; i < len(css); {
		if i+8 < len(css) &&
			css[i] != '=' &&
			css[i+1] == '#' &&
			isRepeatedHexTriplet(css[i+2:i+8]) &&
			isColorTerminator(css[i+8]) {
			b.WriteByte(css[i])
			b.WriteByte('#')
			b.WriteByte(css[i+2])
			b.WriteByte(css[i+4])
			b.WriteByte(css[i+6])
			b.WriteByte(css[i+8])
			i += 9
			continue
		}
		b.WriteByte(css[i])
		i++
	}
	return b.String()
}

func isRepeatedHexTriplet(digits string) bool {
	for i := 0; i < 6; i += 2 {
		if !isHexDigit(digits[i]) || !isHexDigit(digits[i+1]) {
			return false
		}
		if lowerASCII(digits[i]) != lowerASCII(digits[i+1]) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func isColorTerminator(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r', ';', '}':
		return true
	}
	return false
}
