package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xttl/pkg/config/xconf"
	"github.com/omeyang/xttl/pkg/lifecycle/xrun"
	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/storage/xttl"
)

// 配置文件中的段名。
const (
	sectionCache = "cache"
	sectionLog   = "log"
)

// sessionSignals 结束会话的信号。SIGQUIT 保留 Go 默认行为（打印 goroutine 栈后退出）。
var sessionSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// options 是命令行参数。
type options struct {
	config    string
	logLevel  string
	logFormat string
	logFile   string
	watch     bool
}

func flagsFrom(cmd *cli.Command) options {
	return options{
		config:    cmd.String("config"),
		logLevel:  cmd.String("log-level"),
		logFormat: cmd.String("log-format"),
		logFile:   cmd.String("log-file"),
		watch:     cmd.Bool("watch"),
	}
}

// logSettings 是配置文件 log 段，命令行参数优先。
type logSettings struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	File      string `koanf:"file"`
	AddSource bool   `koanf:"addSource"`
}

type settings struct {
	cfg   xconf.Config
	cache map[string]any
	log   logSettings
}

// loadSettings 合并配置文件与命令行参数。
func loadSettings(opts options) (settings, error) {
	s := settings{log: logSettings{Level: "info", Format: "text"}}
	if opts.watch && opts.config == "" {
		return s, &usageError{msg: "--watch requires --config"}
	}

	if opts.config != "" {
		cfg, err := xconf.New(opts.config)
		if err != nil {
			if errors.Is(err, xconf.ErrUnsupportedFormat) {
				return s, &usageError{msg: err.Error()}
			}
			return s, fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Unmarshal(sectionLog, &s.log); err != nil {
			return s, fmt.Errorf("load config: %w", err)
		}
		s.cfg = cfg
		s.cache = cfg.Raw(sectionCache)
	}

	if opts.logLevel != "" {
		s.log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		s.log.Format = opts.logFormat
	}
	if opts.logFile != "" {
		s.log.File = opts.logFile
	}
	return s, nil
}

func buildLogger(ls logSettings, stderr io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetOutput(stderr).
		SetLevelString(ls.Level).
		SetFormat(ls.Format).
		SetAddSource(ls.AddSource).
		SetOnError(func(err error) {
			fmt.Fprintf(stderr, "xttlctl: log write failed: %v\n", err)
		})
	if ls.File != "" {
		b.SetRotation(ls.File, xlog.RotationOptions{})
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, nil, &usageError{msg: err.Error()}
	}
	return logger, cleanup, nil
}

// loggingListener 把缓存通知写入日志。
func loggingListener(logger xlog.Logger) xttl.Listener[string] {
	ctx := context.Background()
	return xttl.ListenerFuncs[string]{
		Push: func(key string, e *xttl.Entry[string]) {
			logger.Debug(ctx, "push", xlog.Key(key), slog.Duration("ttl", e.TTL))
		},
		Del: func(key string) {
			logger.Debug(ctx, "del", xlog.Key(key))
		},
		Clear: func() {
			logger.Info(ctx, "clear")
		},
		Expired: func(key string, _ *xttl.Entry[string]) {
			logger.Info(ctx, "expired", xlog.Key(key))
		},
	}
}

// runSession 创建缓存并运行 REPL，--watch 时同时运行配置监视器。
func runSession(ctx context.Context, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	s, err := loadSettings(opts)
	if err != nil {
		return err
	}
	logger, cleanup, err := buildLogger(s.log, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	metrics, err := newSessionMetrics()
	if err != nil {
		return err
	}
	defer func() { _ = metrics.Shutdown(context.Background()) }()

	cacheOpts := append(xttl.OptionsFromMap(s.cache),
		xttl.WithLogger(logger),
		xttl.WithObserver(metrics.observer),
		xttl.WithListener[string](loggingListener(logger)),
	)
	cache := xttl.New[string](cacheOpts...)
	defer cache.Close()

	sh := newShell(cache, metrics, stdout)
	services := []func(ctx context.Context) error{
		func(ctx context.Context) error {
			return runREPL(ctx, sh, stdin, stdout)
		},
	}
	if opts.watch {
		w, err := xconf.Watch(s.cfg, reloadSweepPeriod(cache, logger))
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		services = append(services, w.Run)
	}

	err = xrun.RunWithOptions(ctx,
		[]xrun.Option{xrun.WithLogger(logger), xrun.WithName("xttlctl"), xrun.WithSignals(sessionSignals)},
		services...,
	)
	if err == nil || errors.Is(err, errQuit) || errors.Is(err, xrun.ErrSignal) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// reloadSweepPeriod 返回配置变更回调：只有清扫周期支持热更新，其余配置需重启生效。
func reloadSweepPeriod(cache *xttl.Cache[string], logger xlog.Logger) xconf.WatchCallback {
	return func(cfg xconf.Config, err error) {
		ctx := context.Background()
		if err != nil {
			logger.Warn(ctx, "config reload failed", xlog.Err(err))
			return
		}
		d, ok, err := xttl.SweepPeriodFromMap(cfg.Raw(sectionCache))
		if err != nil {
			logger.Warn(ctx, "config reload rejected", xlog.Err(err))
			return
		}
		if !ok {
			d = 0
		}
		if cache.Options().SweepPeriod == d {
			return
		}
		if cache.SetSweepPeriod(d) {
			logger.Info(ctx, "sweep period reloaded", xlog.Duration(d))
		}
	}
}
