package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BundleHandler describes the component that renders a resolved bundle.
// It allows injecting fake handlers during tests.
type BundleHandler interface {
	Handle(fiber.Ctx, *BundleRoute) error
}

// BundleHandlerFunc adapts a function to the BundleHandler interface.
type BundleHandlerFunc func(fiber.Ctx, *BundleRoute) error

// Handle makes BundleHandlerFunc satisfy BundleHandler.
func (f BundleHandlerFunc) Handle(c fiber.Ctx, route *BundleRoute) error {
	return f(c, route)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger       *logrus.Logger
	Registry     *BundleRegistry
	Handler      BundleHandler
	ListenPort   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

const contextKeyRequestID = "_assethub_request_id"

// NewApp builds a Fiber application serving GET|HEAD /bundles/:name with
// request IDs and panic recovery.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("bundle registry is required")
	}
	if opts.Handler == nil {
		return nil, errors.New("bundle handler is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ReadTimeout:   opts.ReadTimeout,
		WriteTimeout:  opts.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())

	app.Add([]string{fiber.MethodGet, fiber.MethodHead}, "/bundles/:name", func(c fiber.Ctx) error {
		name := c.Params("name")
		route, ok := opts.Registry.Lookup(name)
		if !ok {
			return renderBundleNotFound(c, opts.Logger, name)
		}
		return opts.Handler.Handle(c, route)
	})

	return app, nil
}

// requestContextMiddleware 为每个请求生成请求 ID，并写入响应头。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

func renderBundleNotFound(c fiber.Ctx, logger *logrus.Logger, name string) error {
	logger.WithFields(logrus.Fields{
		"action":     "bundle_lookup",
		"bundle":     name,
		"request_id": RequestID(c),
	}).Warn("bundle not found")

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "bundle_not_found",
	})
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
