package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

const keyDelimiter = ","

// KeyScheme 选择缓存键的派生方式。
type KeyScheme string

const (
	// KeySchemeJoined 以 "," 拼接文件列表并追加 ".<kind>"，路径中含 "," 时可能碰撞。
	KeySchemeJoined KeyScheme = "joined"
	// KeySchemeDigest 对长度前缀编码的 (kind, files...) 做 SHA-256，不存在分隔符碰撞。
	KeySchemeDigest KeyScheme = "digest"
)

// ParseKeyScheme 标准化配置中的键方案，空值回退到 joined。
func ParseKeyScheme(raw string) (KeyScheme, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(KeySchemeJoined):
		return KeySchemeJoined, nil
	case string(KeySchemeDigest):
		return KeySchemeDigest, nil
	default:
		return "", fmt.Errorf("unsupported key scheme: %s", raw)
	}
}

// Key 按方案派生缓存键。
func (s KeyScheme) Key(files []string, kind string) string {
	if s == KeySchemeDigest {
		return DigestKey(files, kind)
	}
	return GenerateKey(files, kind)
}

// GenerateKey 由有序文件列表与类型生成缓存键，顺序与类型均参与区分。
func GenerateKey(files []string, kind string) string {
	return strings.Join(files, keyDelimiter) + "." + kind
}

// DigestKey 返回 "<sha256 hex>.<kind>"，每个字段都带 8 字节长度前缀。
func DigestKey(files []string, kind string) string {
	h := sha256.New()
	var size [8]byte
	write := func(field string) {
		binary.BigEndian.PutUint64(size[:], uint64(len(field)))
		h.Write(size[:])
		h.Write([]byte(field))
	}

	write(kind)
	binary.BigEndian.PutUint64(size[:], uint64(len(files)))
	h.Write(size[:])
	for _, file := range files {
		write(file)
	}
	return hex.EncodeToString(h.Sum(nil)) + "." + kind
}
