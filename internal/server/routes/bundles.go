package routes

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/asset-hub/internal/cache"
	"github.com/any-hub/asset-hub/internal/media"
	"github.com/any-hub/asset-hub/internal/minify"
	"github.com/any-hub/asset-hub/internal/server"
)

// RegisterDiagnosticsRoutes 暴露 /-/bundles 与 /-/kinds 诊断接口，供运维查询 Bundle 与缓存状态。
func RegisterDiagnosticsRoutes(app *fiber.App, registry *server.BundleRegistry, store cache.Store, transforms *minify.Registry) {
	if app == nil || registry == nil {
		return
	}

	app.Get("/-/bundles", func(c fiber.Ctx) error {
		ctx := c.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return c.JSON(fiber.Map{
			"bundles": encodeBundles(ctx, registry.List(), store),
		})
	})

	app.Get("/-/kinds", func(c fiber.Ctx) error {
		status := map[string]string{}
		if transforms != nil {
			status = transforms.Snapshot(media.Keys())
		}
		return c.JSON(fiber.Map{
			"kinds":              encodeKinds(media.List(), status),
			"transform_registry": status,
		})
	})
}

type bundlePayload struct {
	Name        string     `json:"name"`
	Kind        string     `json:"kind"`
	Files       []string   `json:"files"`
	CacheKey    string     `json:"cache_key"`
	CacheFile   string     `json:"cache_file,omitempty"`
	Cached      bool       `json:"cached"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

type kindPayload struct {
	Kind            string `json:"kind"`
	ContentType     string `json:"content_type"`
	Description     string `json:"description"`
	TransformStatus string `json:"transform_status,omitempty"`
}

func encodeBundles(ctx context.Context, routes []server.BundleRoute, store cache.Store) []bundlePayload {
	if len(routes) == 0 {
		return nil
	}
	result := make([]bundlePayload, 0, len(routes))
	for _, route := range routes {
		item := bundlePayload{
			Name:     route.Config.Name,
			Kind:     string(route.Kind),
			Files:    route.Files(),
			CacheKey: route.CacheKey,
		}
		if store != nil {
			locator := route.Locator()
			if filename, err := store.Filename(locator); err == nil {
				item.CacheFile = filename
			}
			if entry, err := store.Stat(ctx, locator); err == nil {
				generated := entry.ModTime.UTC()
				item.Cached = true
				item.GeneratedAt = &generated
			}
		}
		result = append(result, item)
	}
	return result
}

func encodeKinds(kinds []media.Metadata, status map[string]string) []kindPayload {
	if len(kinds) == 0 {
		return nil
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].Kind < kinds[j].Kind
	})
	result := make([]kindPayload, 0, len(kinds))
	for _, meta := range kinds {
		item := kindPayload{
			Kind:        string(meta.Kind),
			ContentType: meta.ContentType,
			Description: meta.Description,
		}
		if s, ok := status[string(meta.Kind)]; ok {
			item.TransformStatus = s
		}
		result = append(result, item)
	}
	return result
}
