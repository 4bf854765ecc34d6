// Package app 负责应用的启动、依赖装配与子命令分发。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/xandery-geek/RSSHub/internal/cache"
	"github.com/xandery-geek/RSSHub/internal/config"
	"github.com/xandery-geek/RSSHub/internal/douban"
	"github.com/xandery-geek/RSSHub/internal/handler"
	"github.com/xandery-geek/RSSHub/internal/logger"
	"github.com/xandery-geek/RSSHub/internal/metrics"
	"github.com/xandery-geek/RSSHub/internal/security"
	"github.com/xandery-geek/RSSHub/internal/worker/warm"
)

// Init 初始化应用：先装好日志，再从环境变量读取配置。
// w 指定日志输出目标，为 nil 时输出到标准输出。
func Init(w io.Writer) (*config.Config, error) {
	logger.SetupDefault(w, os.Getenv("LOG_FORMAT"))

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Run 是应用主入口。解析子命令并以对应模式启动，args 传 os.Args[1:]。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck 是轻量子命令，跳过完整初始化
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("api_base", cfg.DoubanAPIBase),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	default:
		return runServe(cfg)
	}
}

// buildService 装配时间线服务及其全部依赖。
// serve 与 worker 两种模式共用同一套装配。
func buildService(cfg *config.Config, reg prometheus.Registerer) (*douban.StatusService, metrics.Recorder, error) {
	// 1. 上游地址静态校验
	ssrfGuard := security.NewSSRFGuard()
	if err := ssrfGuard.ValidateURL(cfg.DoubanAPIBase); err != nil {
		return nil, nil, fmt.Errorf("invalid DOUBAN_API_BASE: %w", err)
	}

	// 2. 缓存：配置了 Redis 就用 Redis，否则退回进程内缓存
	var store cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, slog.Default())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		store = redisCache
	} else {
		store = cache.NewMemory()
		slog.Info("using in-memory cache")
	}

	// 3. 指标
	var recorder metrics.Recorder = metrics.Nop{}
	if reg != nil {
		recorder = metrics.NewCollector(reg)
	}

	// 4. 上游客户端：SSRF 防护 + 出站限速
	httpClient := ssrfGuard.NewSafeClient(cfg.FetchTimeout)
	limiter := rate.NewLimiter(rate.Limit(cfg.UpstreamRPS), 1)
	client := douban.NewClient(httpClient, limiter, recorder, slog.Default(), cfg.DoubanAPIBase, cfg.FetchMaxSize)

	// 5. 时间线服务
	service := douban.NewStatusService(
		client, store, recorder, slog.Default(),
		cfg.CacheExpire, cfg.FullTextExpire, cfg.FetchMaxConcurrent,
	)
	return service, recorder, nil
}

// runServe 以 API 服务模式启动。装配全部依赖并启动 HTTP 服务，
// 收到 SIGINT 或 SIGTERM 时优雅退出。
func runServe(cfg *config.Config) error {
	registry := prometheus.NewRegistry()

	service, recorder, err := buildService(cfg, registry)
	if err != nil {
		return err
	}

	router := handler.NewRouter(&handler.RouterDeps{
		TimelineService: service,
		Metrics:         recorder,
		Gatherer:        registry,
		Logger:          slog.Default(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker 以缓存预热 worker 模式启动。
// 周期性刷新配置用户的时间线缓存，收到信号后退出。
func runWorker(cfg *config.Config) error {
	// worker 模式不暴露 HTTP 端口，指标无处抓取，用空实现
	service, _, err := buildService(cfg, nil)
	if err != nil {
		return err
	}

	warmer := warm.NewWarmer(service, slog.Default(), cfg.WarmUserIDs, cfg.FetchMaxConcurrent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("warm_interval", cfg.WarmInterval),
		slog.Int("user_count", len(cfg.WarmUserIDs)),
	)

	// 预热循环在主 goroutine 里阻塞运行
	warmer.Start(ctx, cfg.WarmInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runHealthcheck 对本机 /health 端点发一次请求并返回结果。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
