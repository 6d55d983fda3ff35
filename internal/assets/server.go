package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/any-hub/asset-hub/internal/cache"
	"github.com/any-hub/asset-hub/internal/httpcache"
	"github.com/any-hub/asset-hub/internal/logging"
	"github.com/any-hub/asset-hub/internal/media"
	"github.com/any-hub/asset-hub/internal/minify"
	"github.com/any-hub/asset-hub/internal/server"
)

const headerRegenerated = "X-Asset-Hub-Regenerated"

// Request 描述一次合并请求：资源类型 + 有序文件列表（允许重复，顺序有意义）。
type Request struct {
	Kind  media.Kind
	Files []string
}

// Options 汇总 Server 的依赖。Store 必填，其余字段为空时使用默认值。
type Options struct {
	Store      cache.Store
	Transforms *minify.Registry
	Logger     *logrus.Logger
	// Fs 是读取源文件的文件系统，默认 afero.NewOsFs()。
	Fs afero.Fs
	// ServeGzip 为 true 时所有正文都以 gzip 输出。
	ServeGzip bool
	// NegotiateGzip 为 true 时仅对声明支持 gzip 的客户端压缩，默认关闭。
	NegotiateGzip bool
	// BodyCache 为 nil 时每次都重新压缩。
	BodyCache *cache.BodyCache
	KeyScheme cache.KeyScheme
	Now       func() time.Time
}

// Server 负责 orchestrate “计算缓存键 → 判断过期 → 重新生成或命中 → 条件响应” 的全流程。
type Server struct {
	store       cache.Store
	writer      cache.GenerationWriter
	transforms  *minify.Registry
	logger      *logrus.Logger
	fs          afero.Fs
	gzip        bool
	negotiate   bool
	bodies      *cache.BodyCache
	scheme      cache.KeyScheme
	now         func() time.Time
	conditional httpcache.Writer
}

// NewServer constructs the asset pipeline.
func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, cache.ErrStoreUnavailable
	}
	if opts.Transforms == nil {
		opts.Transforms = minify.NewDefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.KeyScheme == "" {
		opts.KeyScheme = cache.KeySchemeJoined
	}

	return &Server{
		store:       opts.Store,
		writer:      cache.NewGenerationWriter(opts.Store, opts.Now),
		transforms:  opts.Transforms,
		logger:      opts.Logger,
		fs:          opts.Fs,
		gzip:        opts.ServeGzip,
		negotiate:   opts.NegotiateGzip,
		bodies:      opts.BodyCache,
		scheme:      opts.KeyScheme,
		now:         opts.Now,
		conditional: httpcache.NewWriter(),
	}, nil
}

// Locator 返回 (kind, files) 在缓存中的定位。
func (s *Server) Locator(kind media.Kind, files []string) cache.Locator {
	return cache.Locator{Kind: string(kind), Key: s.scheme.Key(files, string(kind))}
}

// ServeStyle 合并并输出样式表。
func (s *Server) ServeStyle(c fiber.Ctx, files ...string) error {
	return s.Serve(c, Request{Kind: media.KindStyle, Files: files})
}

// ServeScript 合并并输出脚本。
func (s *Server) ServeScript(c fiber.Ctx, files ...string) error {
	return s.Serve(c, Request{Kind: media.KindScript, Files: files})
}

// Handle 让 Server 满足 server.BundleHandler。
func (s *Server) Handle(c fiber.Ctx, route *server.BundleRoute) error {
	return s.serve(c, route.Config.Name, Request{Kind: route.Kind, Files: route.Files()})
}

// Serve 执行完整的请求处理。错误会以 JSON 写入响应，仅在写响应本身失败时返回 error。
func (s *Server) Serve(c fiber.Ctx, req Request) error {
	return s.serve(c, "", req)
}

type serveState struct {
	bundle      string
	kind        media.Kind
	locator     cache.Locator
	regenerated bool
	started     time.Time
}

func (s *Server) serve(c fiber.Ctx, bundle string, req Request) error {
	state := serveState{
		bundle:  bundle,
		kind:    req.Kind,
		started: time.Now(),
	}

	if len(req.Files) == 0 {
		return s.fail(c, &state, ErrNoFiles)
	}
	meta, ok := media.Resolve(string(req.Kind))
	if !ok {
		return s.fail(c, &state, fmt.Errorf("%w: %s", ErrUnsupportedKind, req.Kind))
	}
	state.kind = meta.Kind

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	state.locator = s.Locator(meta.Kind, req.Files)

	sources, err := statSources(s.fs, req.Files)
	if err != nil {
		return s.fail(c, &state, err)
	}

	entry, exists, err := s.stat(ctx, state.locator)
	if err != nil {
		return s.fail(c, &state, err)
	}

	var (
		body     []byte
		cachedAt time.Time
	)
	if exists {
		cachedAt = entry.ModTime
	}
	if NeedsRegeneration(cachedAt, exists, sources, s.now()) {
		body, entry, err = s.Regenerate(ctx, meta.Kind, req.Files)
		if err != nil {
			return s.fail(c, &state, err)
		}
		state.regenerated = true
	}

	c.Set(headerRegenerated, strconv.FormatBool(state.regenerated))
	if s.conditional.Apply(c, entry.FilePath, entry.ModTime, time.Time{}) {
		s.logResult(c, &state, fiber.StatusNotModified, 0)
		return nil
	}

	if body == nil {
		body, err = s.readCached(ctx, state.locator)
		if err != nil {
			return s.fail(c, &state, err)
		}
	}

	return s.sendBody(c, &state, meta, body)
}

// Regenerate 读取、合并并压缩源文件，无条件覆盖缓存，返回产物及新的缓存条目。
func (s *Server) Regenerate(ctx context.Context, kind media.Kind, files []string) ([]byte, *cache.Entry, error) {
	if len(files) == 0 {
		return nil, nil, ErrNoFiles
	}
	meta, ok := media.Resolve(string(kind))
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	transform, ok := s.transforms.Fetch(meta.Kind)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no transform for %s", ErrUnsupportedKind, meta.Kind)
	}

	body, err := meta.Combiner.Combine(files, s.readSource, transform)
	if err != nil {
		return nil, nil, err
	}

	locator := s.Locator(meta.Kind, files)
	entry, err := s.writer.Write(ctx, locator, body)
	if err != nil {
		return nil, nil, &CacheIOError{Op: "put", Locator: locator, Err: err}
	}
	return body, entry, nil
}

func (s *Server) readSource(path string) ([]byte, error) {
	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, &media.SourceReadError{Path: path, Err: err}
	}
	return raw, nil
}

func (s *Server) stat(ctx context.Context, locator cache.Locator) (*cache.Entry, bool, error) {
	entry, err := s.store.Stat(ctx, locator)
	switch {
	case err == nil:
		return entry, true, nil
	case errors.Is(err, cache.ErrNotFound):
		return nil, false, nil
	default:
		return nil, false, &CacheIOError{Op: "stat", Locator: locator, Err: err}
	}
}

// readCached 在 304 判断之后才读取正文，命中 304 时不产生磁盘读。
func (s *Server) readCached(ctx context.Context, locator cache.Locator) ([]byte, error) {
	result, err := s.store.Get(ctx, locator)
	if err != nil {
		return nil, &CacheIOError{Op: "get", Locator: locator, Err: err}
	}
	defer result.Reader.Close()

	body, err := io.ReadAll(result.Reader)
	if err != nil {
		return nil, &CacheIOError{Op: "get", Locator: locator, Err: err}
	}
	return body, nil
}

func (s *Server) sendBody(c fiber.Ctx, state *serveState, meta media.Metadata, body []byte) error {
	payload := body
	if meta.BodyPrefix != "" {
		payload = make([]byte, 0, len(meta.BodyPrefix)+len(body))
		payload = append(payload, meta.BodyPrefix...)
		payload = append(payload, body...)
	}

	c.Set(fiber.HeaderVary, fiber.HeaderAcceptEncoding)
	if s.shouldGzip(c) {
		compressed, err := s.gzipBody(payload)
		if err != nil {
			return s.fail(c, state, err)
		}
		payload = compressed
		c.Set(fiber.HeaderContentEncoding, encodingGzip)
	}
	c.Set(fiber.HeaderContentType, meta.ContentType)
	c.Status(fiber.StatusOK)

	if err := c.Send(payload); err != nil {
		return err
	}
	c.Response().Header.SetContentLength(len(payload))
	s.logResult(c, state, fiber.StatusOK, len(payload))
	return nil
}

func (s *Server) shouldGzip(c fiber.Ctx) bool {
	if !s.gzip {
		return false
	}
	if s.negotiate {
		return acceptsGzip(c.Get(fiber.HeaderAcceptEncoding))
	}
	return true
}

// fail 清除已写入的校验头与编码头后输出 JSON 错误，不返回部分内容。
func (s *Server) fail(c fiber.Ctx, state *serveState, err error) error {
	s.conditional.Clear(c)
	c.Response().Header.Del(fiber.HeaderContentEncoding)
	c.Response().Header.Del(headerRegenerated)

	status, code := errorResponse(err)
	fields := s.fields(c, state)
	fields["status"] = status
	fields["error"] = err.Error()
	s.logger.WithFields(fields).Error("serve_failed")

	return c.Status(status).JSON(fiber.Map{"error": code})
}

func (s *Server) logResult(c fiber.Ctx, state *serveState, status, size int) {
	fields := s.fields(c, state)
	fields["status"] = status
	fields["bytes"] = size
	s.logger.WithFields(fields).Info("serve_completed")
}

func (s *Server) fields(c fiber.Ctx, state *serveState) logrus.Fields {
	fields := logging.RequestFields(state.bundle, string(state.kind), state.locator.Key, state.regenerated)
	fields["action"] = "serve"
	fields["elapsed_ms"] = time.Since(state.started).Milliseconds()
	if requestID := server.RequestID(c); requestID != "" {
		fields["request_id"] = requestID
	}
	return fields
}
