package xttl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xttl/internal/keylock"
	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

// componentName 用于日志与观测的组件名。
const componentName = "xttl"

// Cache 是带过期时间的进程内 KV 存储。
//
// 所有方法并发安全。同一 key 的写入、删除和过期检查通过 key 级锁串行化；
// 整体 map 由一把互斥锁保护，且该锁不会在用户回调（刷新函数、生产函数、
// 监听器）执行期间持有。这些回调的 panic 都会被恢复。
type Cache[V any] struct {
	id         string
	ttl        time.Duration
	refresh    RefreshFunc[V]
	lastUsage  bool
	clock      Clock
	logger     xlog.Logger
	observer   xmetrics.Observer
	asyncLimit int

	locks     *keylock.Locker
	listeners listeners[V]

	mu     sync.Mutex
	items  map[string]*Entry[V]
	closed atomic.Bool

	sweepMu     sync.Mutex
	sweepPeriod time.Duration
	sweepCancel context.CancelFunc
	sweepDone   chan struct{}

	async sync.WaitGroup
}

// New 创建缓存。配置错误不会导致构造失败：无效字段回退为默认值，
// 错误在构造完成后通过 OnError 通知并记录 warn 日志。
//
// 清扫周期大于 0 时会启动后台清扫 goroutine，使用完毕必须调用 Close。
func New[V any](opts ...Option) *Cache[V] {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	c := &Cache[V]{
		id:         uuid.NewString(),
		ttl:        o.ttl,
		lastUsage:  o.lastUsage,
		clock:      o.clock,
		observer:   o.observer,
		asyncLimit: o.asyncLimit,
		locks:      keylock.New(keylock.DefaultShards),
		items:      make(map[string]*Entry[V]),
	}
	if c.clock == nil {
		c.clock = newUptimeClock()
	}
	c.logger = o.logger.With(xlog.Component(componentName), slog.String("cache_id", c.id))
	c.listeners.logger = c.logger

	for _, l := range o.listeners {
		typed, ok := l.(Listener[V])
		if !ok {
			o.fail(fmt.Errorf("%w: %T", ErrInvalidListener, l))
			continue
		}
		c.listeners.add(typed)
	}

	refresh, ok := resolveRefresh[V](o.refresh)
	if !ok {
		o.fail(fmt.Errorf("%w: %T", ErrInvalidRefreshFunc, o.refresh))
	}
	c.refresh = refresh

	for _, err := range o.errs {
		c.emitError(err)
	}

	c.sweepMu.Lock()
	c.startSweepLocked(o.sweepPeriod)
	c.sweepMu.Unlock()

	c.logger.Debug(context.Background(), "xttl: cache created",
		slog.Duration("ttl", c.ttl),
		slog.Bool("last_usage", c.lastUsage),
		slog.Duration("sweep_period", o.sweepPeriod),
	)
	return c
}

// ID 返回缓存实例 ID，用于区分日志和指标中的多个实例。
func (c *Cache[V]) ID() string {
	return c.id
}

// Options 返回当前生效的配置。
func (c *Cache[V]) Options() Config[V] {
	c.sweepMu.Lock()
	period := c.sweepPeriod
	c.sweepMu.Unlock()
	return Config[V]{
		TTL:         c.ttl,
		Refresh:     c.refresh,
		LastUsage:   c.lastUsage,
		SweepPeriod: period,
	}
}

// Subscribe 注册监听器，返回的函数用于取消订阅（可重复调用）。
func (c *Cache[V]) Subscribe(l Listener[V]) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	return c.listeners.add(l)
}

// Push 写入 key，覆盖已有条目。
//
// 未指定的 TTL 与刷新函数取缓存默认值。val 缺失且没有刷新函数时拒绝写入：
// 返回 false 并通知 ErrMissingValue。val 缺失但有刷新函数时，刷新函数在
// 插入前对新条目立即执行一次，用于惰性生成初始值。
//
// ctx 仅用于等待该 key 的锁，取消后返回 false。
func (c *Cache[V]) Push(ctx context.Context, key string, val Value[V], opts ...PushOption) bool {
	var po pushOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&po)
		}
	}

	ttl := c.ttl
	if po.ttlSet {
		if po.ttl < 0 {
			c.emitError(fmt.Errorf("%w: key %q: %v", ErrInvalidTTL, key, po.ttl))
			return false
		}
		ttl = po.ttl
	}

	refresh := c.refresh
	if po.refreshSet {
		fn, ok := resolveRefresh[V](po.refresh)
		if ok {
			refresh = fn
		} else {
			c.emitError(fmt.Errorf("%w: key %q: %T", ErrInvalidRefreshFunc, key, po.refresh))
		}
	}

	if val.IsAbsent() && refresh == nil {
		c.emitError(fmt.Errorf("%w: key %q", ErrMissingValue, key))
		return false
	}
	if c.closed.Load() {
		c.emitError(fmt.Errorf("%w: push %q", ErrClosed, key))
		return false
	}

	unlock, err := c.locks.Lock(ctx, key)
	if err != nil {
		c.emitError(fmt.Errorf("xttl: push %q: %w", key, err))
		return false
	}
	defer unlock()

	now := c.clock.Now()
	e := &Entry[V]{
		Key:        key,
		Value:      val,
		CreateTime: now,
		LastUsage:  now,
		TTL:        ttl,
		Refresh:    refresh,
		now:        now,
	}
	if val.IsAbsent() {
		if !c.runRefresh(key, e) {
			return false
		}
		if e.Value.IsAbsent() && e.Refresh == nil {
			c.emitError(fmt.Errorf("%w: key %q", ErrMissingValue, key))
			return false
		}
	}

	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return false
	}
	c.items[key] = e
	c.mu.Unlock()

	c.listeners.each("push", func(l Listener[V]) { l.OnPush(key, e) })
	return true
}

// Set 写入直接值，等价于 Push(ctx, key, Raw(v), opts...)。
func (c *Cache[V]) Set(ctx context.Context, key string, v V, opts ...PushOption) bool {
	return c.Push(ctx, key, Raw(v), opts...)
}

// Get 读取单个 key。key 不存在、已过期被删除、没有可用值或生产函数 panic
// 时返回 false。生产函数在该 key 的锁内调用，得到值后才更新 LastUsage。
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	return c.read(ctx, key)
}

// GetMulti 读取多个 key，结果的 key 集合与 keys 相同，未命中的 key 对应 nil。
// keys 为空时返回 nil。
func (c *Cache[V]) GetMulti(ctx context.Context, keys []string) map[string]*V {
	if len(keys) == 0 {
		return nil
	}
	ctx, span := xmetrics.Start(ctx, c.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "get_multi",
		Kind:      xmetrics.KindInternal,
		Attrs:     []xmetrics.Attr{xmetrics.Int("keys", len(keys))},
	})

	result := make(map[string]*V, len(keys))
	hits := 0
	for _, key := range keys {
		if v, ok := c.read(ctx, key); ok {
			result[key] = &v
			hits++
		} else {
			result[key] = nil
		}
	}

	span.End(xmetrics.Result{Attrs: []xmetrics.Attr{xmetrics.Int("hits", hits)}})
	return result
}

// GetAsync 并发读取多个 key，全部完成后以与 GetMulti 相同的结果调用一次 done。
//
// done 在后台 goroutine 中调用，不得在其中调用 Close。缓存已关闭时 done
// 被同步调用，所有 key 未命中。
func (c *Cache[V]) GetAsync(ctx context.Context, keys []string, done func(map[string]*V)) {
	if done == nil {
		return
	}

	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		done(missAll[V](keys))
		return
	}
	c.async.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.async.Done()
		done(c.fanOut(ctx, keys))
	}()
}

func (c *Cache[V]) fanOut(ctx context.Context, keys []string) map[string]*V {
	if len(keys) == 0 {
		return nil
	}
	ctx, span := xmetrics.Start(ctx, c.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "get_async",
		Kind:      xmetrics.KindInternal,
		Attrs:     []xmetrics.Attr{xmetrics.Int("keys", len(keys))},
	})

	var (
		mu     sync.Mutex
		result = make(map[string]*V, len(keys))
		g      errgroup.Group
	)
	if c.asyncLimit > 0 {
		g.SetLimit(c.asyncLimit)
	}
	for _, key := range keys {
		g.Go(func() error {
			v, ok := c.read(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				result[key] = &v
			} else if _, seen := result[key]; !seen {
				result[key] = nil
			}
			return nil
		})
	}
	err := g.Wait()

	span.End(xmetrics.Result{Err: err})
	return result
}

func missAll[V any](keys []string) map[string]*V {
	if len(keys) == 0 {
		return nil
	}
	m := make(map[string]*V, len(keys))
	for _, k := range keys {
		m[k] = nil
	}
	return m
}

// Has 报告 key 当前是否在存储中，不做过期检查。
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Del 删除 keys，返回实际删除的数量。不存在的 key 被跳过。
func (c *Cache[V]) Del(ctx context.Context, keys ...string) int {
	count := 0
	for _, key := range keys {
		if c.delete(ctx, key) {
			count++
		}
	}
	return count
}

func (c *Cache[V]) delete(ctx context.Context, key string) bool {
	unlock, err := c.locks.Lock(ctx, key)
	if err != nil {
		return false
	}
	defer unlock()

	c.mu.Lock()
	_, ok := c.items[key]
	if ok {
		delete(c.items, key)
	}
	c.mu.Unlock()

	if ok {
		c.listeners.each("del", func(l Listener[V]) { l.OnDel(key) })
	}
	return ok
}

// Clear 清空所有条目并发出 clear 通知。
// 不等待进行中的检查：检查完成后只会删除仍是它所检查的那个条目。
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]*Entry[V])
	c.mu.Unlock()

	c.listeners.each("clear", func(l Listener[V]) { l.OnClear() })
}

// Size 返回当前条目数，包括已过期但尚未检查到的条目。
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys 返回当前所有 key 的快照，顺序不确定。
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

// Close 停止后台清扫，等待进行中的 GetAsync，并释放 key 锁表。可重复调用。
// 关闭后写入返回 false，读取未命中。
func (c *Cache[V]) Close() {
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return
	}
	c.closed.Store(true)
	c.mu.Unlock()

	c.sweepMu.Lock()
	c.stopSweepLocked()
	c.sweepMu.Unlock()

	c.async.Wait()
	c.locks.Close()
	c.logger.Debug(context.Background(), "xttl: cache closed")
}

// read 是 Get 系列的单 key 路径。
func (c *Cache[V]) read(ctx context.Context, key string) (V, bool) {
	var zero V
	if c.closed.Load() || !c.Has(key) {
		return zero, false
	}

	unlock, err := c.locks.Lock(ctx, key)
	if err != nil {
		return zero, false
	}

	// 等锁期间条目可能被替换或删除，重新查找。
	c.mu.Lock()
	e, ok := c.items[key]
	c.mu.Unlock()
	if !ok || c.check(key, e) == outcomeEvicted || e.Value.IsAbsent() {
		unlock()
		return zero, false
	}
	v, ok := c.resolve(key, e.Value)
	if ok {
		e.LastUsage = c.clock.Now()
	}
	unlock()

	if !ok {
		return zero, false
	}
	c.listeners.each("get", func(l Listener[V]) { l.OnGet(key, v) })
	return v, true
}

// resolve 取得可见值，生产函数 panic 时按未命中处理并通知 ErrProducerPanic。
func (c *Cache[V]) resolve(key string, val Value[V]) (v V, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			c.emitError(fmt.Errorf("%w: key %q: %v", ErrProducerPanic, key, r))
		}
	}()
	return val.Resolve(), true
}

func (c *Cache[V]) emitError(err error) {
	c.logger.Warn(context.Background(), "xttl: error notification", xlog.Err(err))
	c.listeners.each("error", func(l Listener[V]) { l.OnError(err) })
}
