package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/afero"

	"github.com/any-hub/asset-hub/internal/cache"
	"github.com/any-hub/asset-hub/internal/config"
	"github.com/any-hub/asset-hub/internal/media"
	"github.com/any-hub/asset-hub/internal/minify"
	"github.com/any-hub/asset-hub/internal/server"
)

func newRegistry(t *testing.T) *server.BundleRegistry {
	t.Helper()
	registry, err := server.NewBundleRegistry(&config.Config{
		Bundles: []config.BundleConfig{
			{Name: "site", Type: "css", Files: []string{"/a.css", "/b.css"}},
			{Name: "app", Type: "js", Files: []string{"/a.js"}},
		},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return registry
}

func TestBundlesEndpointReportsCacheState(t *testing.T) {
	registry := newRegistry(t)
	store, err := cache.NewStoreWithFs(afero.NewMemMapFs(), "/storage")
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	site, _ := registry.Lookup("site")
	generated := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if _, err := store.Put(context.Background(), site.Locator(), bytes.NewReader([]byte("a{}")), cache.PutOptions{ModTime: generated}); err != nil {
		t.Fatalf("put: %v", err)
	}

	app := fiber.New()
	RegisterDiagnosticsRoutes(app, registry, store, minify.NewDefaultRegistry())

	resp, err := app.Test(httptest.NewRequest("GET", "/-/bundles", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Bundles []bundlePayload `json:"bundles"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode: %v (%s)", err, raw)
	}
	if len(payload.Bundles) != 2 {
		t.Fatalf("expected 2 bundles, got %d", len(payload.Bundles))
	}

	first := payload.Bundles[0]
	if first.Name != "site" || first.Kind != "css" || first.CacheKey != "/a.css,/b.css.css" {
		t.Fatalf("unexpected site payload %+v", first)
	}
	if !first.Cached || first.GeneratedAt == nil || !first.GeneratedAt.Equal(generated) {
		t.Fatalf("site should be reported as cached at %v: %+v", generated, first)
	}
	if first.CacheFile == "" {
		t.Fatalf("cache file should be reported")
	}

	second := payload.Bundles[1]
	if second.Cached || second.GeneratedAt != nil {
		t.Fatalf("app bundle should not be cached: %+v", second)
	}
}

func TestKindsEndpoint(t *testing.T) {
	app := fiber.New()
	transforms := minify.NewRegistry()
	transforms.MustRegister(media.KindStyle, minify.Style)
	RegisterDiagnosticsRoutes(app, newRegistry(t), nil, transforms)

	resp, err := app.Test(httptest.NewRequest("GET", "/-/kinds", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	var payload struct {
		Kinds    []kindPayload     `json:"kinds"`
		Registry map[string]string `json:"transform_registry"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode: %v (%s)", err, raw)
	}
	if len(payload.Kinds) != 2 || payload.Kinds[0].Kind != "css" || payload.Kinds[1].Kind != "js" {
		t.Fatalf("kinds should be sorted css, js: %+v", payload.Kinds)
	}
	if payload.Kinds[0].TransformStatus != "registered" {
		t.Fatalf("css transform should be registered: %+v", payload.Kinds[0])
	}
	if payload.Kinds[1].TransformStatus != "missing" {
		t.Fatalf("js transform should be missing: %+v", payload.Kinds[1])
	}
	if payload.Kinds[1].ContentType != "application/javascript" {
		t.Fatalf("unexpected js content type %s", payload.Kinds[1].ContentType)
	}
}

func TestEncodeKindsSorts(t *testing.T) {
	encoded := encodeKinds([]media.Metadata{
		{Kind: "js", ContentType: "application/javascript"},
		{Kind: "css", ContentType: "text/css"},
	}, map[string]string{"css": "registered"})
	if encoded[0].Kind != "css" || encoded[0].TransformStatus != "registered" {
		t.Fatalf("unexpected encoding %+v", encoded)
	}
	if encoded[1].TransformStatus != "" {
		t.Fatalf("js should have no status")
	}
	if encodeKinds(nil, nil) != nil {
		t.Fatalf("empty input should encode to nil")
	}
}
