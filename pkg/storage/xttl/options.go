package xttl

import (
	"fmt"
	"time"

	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

// defaultAsyncLimit GetAsync 默认的并发查找上限。
const defaultAsyncLimit = 16

// Config 是缓存生效的配置快照，由 [Cache.Options] 返回。
type Config[V any] struct {
	// TTL 写入未指定 TTL 时使用的默认值，0 表示永不过期。
	TTL time.Duration
	// Refresh 写入未指定刷新函数时使用的默认值。
	Refresh RefreshFunc[V]
	// LastUsage 为 true 时从最近一次成功读取开始计算过期，否则从写入时刻。
	LastUsage bool
	// SweepPeriod 后台清扫周期，0 表示禁用。
	SweepPeriod time.Duration
}

// Option 配置缓存。与值类型相关的选项（WithRefresh、WithListener）在 New 中
// 按缓存的值类型校验，不匹配时丢弃并发出错误通知。
type Option func(*options)

type options struct {
	ttl         time.Duration
	lastUsage   bool
	sweepPeriod time.Duration
	refresh     any
	listeners   []any
	logger      xlog.Logger
	observer    xmetrics.Observer
	clock       Clock
	asyncLimit  int
	errs        []error
}

func defaultOptions() *options {
	return &options{
		logger:     xlog.Discard(),
		observer:   xmetrics.NoopObserver{},
		asyncLimit: defaultAsyncLimit,
	}
}

func (o *options) fail(err error) {
	o.errs = append(o.errs, err)
}

// WithTTL 设置默认 TTL。负值无效：保留默认值 0 并发出 ErrInvalidTTL 通知。
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			o.fail(fmt.Errorf("%w: %v", ErrInvalidTTL, d))
			return
		}
		o.ttl = d
	}
}

// WithSweepPeriod 设置后台清扫周期。负值无效：保持禁用并发出 ErrInvalidSweepPeriod 通知。
func WithSweepPeriod(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			o.fail(fmt.Errorf("%w: %v", ErrInvalidSweepPeriod, d))
			return
		}
		o.sweepPeriod = d
	}
}

// WithLastUsage 设置是否按最近一次成功读取计算过期。
func WithLastUsage(enable bool) Option {
	return func(o *options) {
		o.lastUsage = enable
	}
}

// WithRefresh 设置默认刷新函数，nil 表示没有。
func WithRefresh[V any](fn RefreshFunc[V]) Option {
	return func(o *options) {
		if fn == nil {
			o.refresh = nil
			return
		}
		o.refresh = fn
	}
}

// WithListener 注册生命周期监听器，构造期间的配置错误也会通知到它。
func WithListener[V any](l Listener[V]) Option {
	return func(o *options) {
		if l != nil {
			o.listeners = append(o.listeners, l)
		}
	}
}

// WithLogger 设置日志记录器，nil 被忽略。默认丢弃日志。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置观测器，用于 Sweep、GetMulti、GetAsync 的 span 与指标。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithClock 注入时钟，默认使用以缓存创建时刻为原点的单调时钟。
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithAsyncLimit 设置 GetAsync 的并发查找上限，n <= 0 表示不限制。
func WithAsyncLimit(n int) Option {
	return func(o *options) {
		o.asyncLimit = n
	}
}

// resolveRefresh 按值类型解析刷新函数：接受 RefreshFunc[V] 与 func(*Entry[V])。
func resolveRefresh[V any](v any) (RefreshFunc[V], bool) {
	switch fn := v.(type) {
	case nil:
		return nil, true
	case RefreshFunc[V]:
		return fn, true
	case func(*Entry[V]):
		return fn, true
	default:
		return nil, false
	}
}
