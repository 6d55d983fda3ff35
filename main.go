package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/asset-hub/internal/assets"
	"github.com/any-hub/asset-hub/internal/cache"
	"github.com/any-hub/asset-hub/internal/config"
	"github.com/any-hub/asset-hub/internal/logging"
	"github.com/any-hub/asset-hub/internal/minify"
	"github.com/any-hub/asset-hub/internal/server"
	"github.com/any-hub/asset-hub/internal/server/routes"
	"github.com/any-hub/asset-hub/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["bundles"] = config.BundleNames(cfg.Bundles)
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	app, cleanup, err := buildApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化服务失败: %v\n", err)
		return 1
	}
	defer cleanup()

	fields := logging.BaseFields("startup", opts.configPath)
	fields["bundles"] = config.BundleNames(cfg.Bundles)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["serve_gzip"] = cfg.Global.ServeGzip
	fields["key_scheme"] = cfg.Global.KeyScheme
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(app, cfg.Global.ListenPort, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// buildApp 按“BundleRegistry → 磁盘缓存 → 内存正文缓存 → 资源服务 → Fiber app”顺序装配，
// 所有请求共享同一份缓存与压缩函数注册表。
func buildApp(cfg *config.Config, logger *logrus.Logger) (*fiber.App, func(), error) {
	registry, err := server.NewBundleRegistry(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("构建 Bundle 注册表失败: %w", err)
	}

	store, err := cache.NewStore(cfg.Global.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化缓存目录失败: %w", err)
	}

	var bodies *cache.BodyCache
	if cfg.Global.MaxMemoryCache > 0 {
		bodies, err = cache.NewBodyCache(cfg.Global.MaxMemoryCache)
		if err != nil {
			return nil, nil, err
		}
	}

	transforms := minify.NewDefaultRegistry()
	assetServer, err := assets.NewServer(assets.Options{
		Store:         store,
		Transforms:    transforms,
		Logger:        logger,
		ServeGzip:     cfg.Global.ServeGzip,
		NegotiateGzip: cfg.Global.NegotiateGzip,
		BodyCache:     bodies,
		KeyScheme:     registry.KeyScheme(),
	})
	if err != nil {
		bodies.Close()
		return nil, nil, err
	}

	app, err := server.NewApp(server.AppOptions{
		Logger:       logger,
		Registry:     registry,
		Handler:      assetServer,
		ListenPort:   cfg.Global.ListenPort,
		ReadTimeout:  cfg.Global.ReadTimeout.DurationValue(),
		WriteTimeout: cfg.Global.WriteTimeout.DurationValue(),
	})
	if err != nil {
		bodies.Close()
		return nil, nil, err
	}
	routes.RegisterDiagnosticsRoutes(app, registry, store, transforms)

	return app, bodies.Close, nil
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("asset-hub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 ASSET_HUB_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("ASSET_HUB_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(app *fiber.App, port int, logger *logrus.Logger) error {
	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
