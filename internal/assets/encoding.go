package assets

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
)

const encodingGzip = "gzip"

// acceptsGzip 仅在开启 NegotiateGzip 时使用。解析 Accept-Encoding，gzip/x-gzip 或 * 且 q 不为 0 时返回 true。
// 显式的 gzip;q=0 优先于 *。
func acceptsGzip(header string) bool {
	explicit, wildcard := -1.0, -1.0
	for _, part := range strings.Split(header, ",") {
		coding, q := parseCoding(part)
		switch coding {
		case "gzip", "x-gzip":
			if q > explicit {
				explicit = q
			}
		case "*":
			wildcard = q
		}
	}
	if explicit >= 0 {
		return explicit > 0
	}
	return wildcard > 0
}

func parseCoding(part string) (string, float64) {
	fields := strings.Split(part, ";")
	coding := strings.ToLower(strings.TrimSpace(fields[0]))
	q := 1.0
	for _, param := range fields[1:] {
		name, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "q") {
			continue
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			q = 0
			continue
		}
		q = parsed
	}
	return coding, q
}

// gzipBody 以最高压缩等级编码 body，命中内存缓存时跳过压缩。
func (s *Server) gzipBody(body []byte) ([]byte, error) {
	digest := xxhash.Sum64(body)
	if cached, ok := s.bodies.Get(encodingGzip, digest, len(body)); ok {
		return cached, nil
	}

	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := writer.Write(body); err != nil {
		return nil, fmt.Errorf("gzip body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip body: %w", err)
	}

	compressed := buf.Bytes()
	s.bodies.Set(encodingGzip, digest, len(body), compressed)
	return compressed, nil
}
