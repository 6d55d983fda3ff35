package cache

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestStorePutAndGet(t *testing.T) {
	store := newTestStore(t)
	locator := Locator{Kind: "css", Key: "/srv/a.css,/srv/b.css.css"}

	modTime := time.Now().Add(-time.Hour).UTC()
	payload := []byte("a{color:red}")
	if _, err := store.Put(context.Background(), locator, bytes.NewReader(payload), PutOptions{ModTime: modTime}); err != nil {
		t.Fatalf("put error: %v", err)
	}

	result, err := store.Get(context.Background(), locator)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	defer result.Reader.Close()

	body, err := io.ReadAll(result.Reader)
	if err != nil {
		t.Fatalf("read cached body error: %v", err)
	}
	if string(body) != string(payload) {
		t.Fatalf("cached payload mismatch: %s", string(body))
	}
	if result.Entry.SizeBytes != int64(len(payload)) {
		t.Fatalf("size mismatch: %d", result.Entry.SizeBytes)
	}
	if !result.Entry.ModTime.Equal(modTime) {
		t.Fatalf("modtime mismatch: expected %v got %v", modTime, result.Entry.ModTime)
	}
}

func TestStorePutOverwrites(t *testing.T) {
	store := newTestStore(t)
	locator := Locator{Kind: "js", Key: "/a.js.js"}
	ctx := context.Background()

	if _, err := store.Put(ctx, locator, strings.NewReader("first"), PutOptions{}); err != nil {
		t.Fatalf("put error: %v", err)
	}
	entry, err := store.Put(ctx, locator, strings.NewReader("second!"), PutOptions{})
	if err != nil {
		t.Fatalf("put error: %v", err)
	}
	if entry.SizeBytes != 7 {
		t.Fatalf("unexpected size %d", entry.SizeBytes)
	}

	result, err := store.Get(ctx, locator)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	defer result.Reader.Close()
	body, _ := io.ReadAll(result.Reader)
	if string(body) != "second!" {
		t.Fatalf("expected overwrite, got %s", body)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), Locator{Kind: "css", Key: "missing.css"})
	if err == nil || err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Stat(context.Background(), Locator{Kind: "css", Key: "missing.css"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound from Stat, got %v", err)
	}
}

func TestStoreIgnoresDirectories(t *testing.T) {
	store := newTestStore(t)
	locator := Locator{Kind: "css", Key: "dir.css"}

	fs, ok := store.(*fileStore)
	if !ok {
		t.Fatalf("unexpected store type %T", store)
	}

	filePath, err := fs.entryPath(locator)
	if err != nil {
		t.Fatalf("path error: %v", err)
	}
	if err := fs.fs.MkdirAll(filePath, 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}

	if _, err := store.Get(context.Background(), locator); err == nil || err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for directory, got %v", err)
	}
}

func TestStoreFilenameLayout(t *testing.T) {
	store := newTestStore(t)
	name, err := store.Filename(Locator{Kind: "JS", Key: "/a/b.js,/c/d.js.js"})
	if err != nil {
		t.Fatalf("filename error: %v", err)
	}
	if filepath.Base(filepath.Dir(name)) != "js" {
		t.Fatalf("entries should live under the kind directory: %s", name)
	}
	if !strings.HasSuffix(name, ".js") || strings.Contains(filepath.Base(name), ",") {
		t.Fatalf("unexpected filename %s", name)
	}

	other, _ := store.Filename(Locator{Kind: "js", Key: "/c/d.js,/a/b.js.js"})
	if other == name {
		t.Fatalf("different keys must map to different files")
	}
}

func TestStoreRejectsInvalidLocator(t *testing.T) {
	store := newTestStore(t)
	cases := []Locator{
		{Kind: "", Key: "k"},
		{Kind: "css", Key: ""},
		{Kind: "../css", Key: "k"},
	}
	for _, loc := range cases {
		if _, err := store.Filename(loc); err == nil {
			t.Fatalf("expected error for %+v", loc)
		}
	}
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	locator := Locator{Kind: "css", Key: "canceled.css"}
	if _, err := store.Put(ctx, locator, strings.NewReader("data"), PutOptions{}); err == nil {
		t.Fatalf("put should fail with canceled context")
	}
	if _, err := store.Stat(context.Background(), locator); err != ErrNotFound {
		t.Fatalf("failed put must not leave an entry behind, got %v", err)
	}
}

// newTestStore returns a Store backed by an in-memory filesystem.
func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewStoreWithFs(afero.NewMemMapFs(), "/storage")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestStorePutReportsStoredModTime(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	locator := Locator{Kind: "js", Key: "a.js.js"}
	modTime := time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC)

	entry, err := store.Put(context.Background(), locator, strings.NewReader("x"), PutOptions{ModTime: modTime})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	stat, err := store.Stat(context.Background(), locator)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if !entry.ModTime.Equal(stat.ModTime) {
		t.Fatalf("put should report the stored modtime: put=%v stat=%v", entry.ModTime, stat.ModTime)
	}
}
