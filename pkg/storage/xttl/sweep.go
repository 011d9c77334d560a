package xttl

import (
	"context"
	"fmt"
	"time"

	"github.com/omeyang/xttl/pkg/lifecycle/xrun"
	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

// SweepStats 是一轮清扫的统计。
type SweepStats struct {
	// Checked 实际检查的条目数。
	Checked int
	// Refreshed 经刷新函数续期后保留的条目数。
	Refreshed int
	// Evicted 被删除的条目数。
	Evicted int
}

// Sweep 对当前所有条目执行一次过期检查，这也是后台清扫每个周期所做的事。
//
// key 在开始时取快照：清扫期间新增的条目不会在本轮检查，已删除的条目被跳过。
// 检查按 key 依次进行，阻塞的刷新函数会推迟其后 key 的检查。ctx 取消时提前结束。
func (c *Cache[V]) Sweep(ctx context.Context) SweepStats {
	ctx, span := xmetrics.Start(ctx, c.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "sweep",
		Kind:      xmetrics.KindInternal,
		Attrs:     []xmetrics.Attr{xmetrics.String("cache_id", c.id)},
	})
	start := time.Now()

	var (
		stats SweepStats
		err   error
	)
	for _, key := range c.Keys() {
		if err = c.sweepKey(ctx, key, &stats); err != nil {
			break
		}
	}

	span.End(xmetrics.Result{
		Err: err,
		Attrs: []xmetrics.Attr{
			xmetrics.Int("checked", stats.Checked),
			xmetrics.Int("refreshed", stats.Refreshed),
			xmetrics.Int("evicted", stats.Evicted),
		},
	})
	c.logger.Debug(ctx, "xttl: sweep finished",
		xlog.Count(int64(stats.Checked)),
		xlog.Duration(time.Since(start)),
		xlog.Err(err),
	)
	return stats
}

func (c *Cache[V]) sweepKey(ctx context.Context, key string, stats *SweepStats) error {
	unlock, err := c.locks.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	c.mu.Lock()
	e, ok := c.items[key]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	stats.Checked++
	switch c.check(key, e) {
	case outcomeRefreshed:
		stats.Refreshed++
	case outcomeEvicted:
		stats.Evicted++
	}
	return nil
}

// SetSweepPeriod 停止当前的后台清扫并按新周期重新启动，d 为 0 时只停止。
// 负值无效：保持原状、通知 ErrInvalidSweepPeriod 并返回 false。
// 缓存关闭后返回 false。
//
// 会等待进行中的清扫结束，不得在刷新函数或监听器中调用。
func (c *Cache[V]) SetSweepPeriod(d time.Duration) bool {
	if d < 0 {
		c.emitError(fmt.Errorf("%w: %v", ErrInvalidSweepPeriod, d))
		return false
	}

	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()
	if c.closed.Load() {
		return false
	}
	c.stopSweepLocked()
	c.startSweepLocked(d)
	c.logger.Debug(context.Background(), "xttl: sweep period changed", xlog.Duration(d))
	return true
}

// startSweepLocked 启动清扫 goroutine，调用方必须持有 sweepMu。
func (c *Cache[V]) startSweepLocked(d time.Duration) {
	c.sweepPeriod = d
	if d <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.sweepCancel = cancel
	c.sweepDone = done

	run := xrun.Ticker(d, false, func(ctx context.Context) error {
		c.Sweep(ctx)
		return nil
	})
	go func() {
		defer close(done)
		_ = run(ctx)
	}()
}

// stopSweepLocked 取消清扫 goroutine 并等待其退出，调用方必须持有 sweepMu。
func (c *Cache[V]) stopSweepLocked() {
	if c.sweepCancel == nil {
		return
	}
	c.sweepCancel()
	<-c.sweepDone
	c.sweepCancel = nil
	c.sweepDone = nil
}
