package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGenerationWriterStampsClock(t *testing.T) {
	store := newTestStore(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	writer := NewGenerationWriter(store, func() time.Time { return fixed })

	entry, err := writer.Write(context.Background(), Locator{Kind: "css", Key: "k.css"}, []byte("a{}"))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !entry.ModTime.Equal(fixed) {
		t.Fatalf("expected generation time %v, got %v", fixed, entry.ModTime)
	}
	stat, err := store.Stat(context.Background(), entry.Locator)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if !stat.ModTime.Equal(fixed) {
		t.Fatalf("stored modtime mismatch: %v", stat.ModTime)
	}
}

func TestGenerationWriterWithoutStore(t *testing.T) {
	writer := NewGenerationWriter(nil, nil)
	if _, err := writer.Write(context.Background(), Locator{Kind: "css", Key: "k"}, nil); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
