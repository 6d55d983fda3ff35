package assets

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/any-hub/asset-hub/internal/cache"
)

func TestAcceptsGzip(t *testing.T) {
	testCases := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"gzip", true},
		{"GZIP", true},
		{"deflate, gzip;q=0.5", true},
		{"x-gzip", true},
		{"br", false},
		{"*", true},
		{"gzip;q=0", false},
		{"gzip;q=0, *", false},
		{"*;q=0", false},
		{"identity, *;q=0.1", true},
		{"gzip;q=bogus", false},
	}

	for _, tc := range testCases {
		if got := acceptsGzip(tc.header); got != tc.want {
			t.Fatalf("acceptsGzip(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}

func TestGzipBodyUsesMemo(t *testing.T) {
	bodies, err := cache.NewBodyCache(1 << 20)
	if err != nil {
		t.Fatalf("body cache: %v", err)
	}
	defer bodies.Close()

	srv := &Server{bodies: bodies}
	payload := bytes.Repeat([]byte("body{color:red}"), 64)

	first, err := srv.gzipBody(payload)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	bodies.Wait()
	second, err := srv.gzipBody(payload)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("memoized output should be identical")
	}

	reader, err := gzip.NewReader(bytes.NewReader(second))
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	plain, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("gunzip: %v", err)
	}
	if !bytes.Equal(plain, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestGzipBodyWithoutMemo(t *testing.T) {
	srv := &Server{}
	out, err := srv.gzipBody([]byte("x"))
	if err != nil || len(out) == 0 {
		t.Fatalf("gzip without memo failed: %v", err)
	}
}
