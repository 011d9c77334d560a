package xttl

import (
	"context"
	"fmt"
	"log/slog"
)

// outcome 是一次过期检查的结果。
type outcome int

const (
	outcomeValid outcome = iota
	outcomeRefreshed
	outcomeEvicted
)

// maxPasses 过期检查的最大轮次：首轮加一次刷新后的重试。
const maxPasses = 2

// check 判断条目是否仍然有效，调用方必须持有 key 的锁。
//
// 已过期时先通知 OnExpired；有刷新函数且是首轮则调用它并重新检查，
// 否则删除条目。重试只有一次，刷新后仍过期的条目会被删除。
func (c *Cache[V]) check(key string, e *Entry[V]) outcome {
	refreshed := false
	for pass := 1; ; pass++ {
		now := c.clock.Now()
		if !e.expired(now, c.lastUsage) {
			if refreshed {
				return outcomeRefreshed
			}
			return outcomeValid
		}

		c.listeners.each("expired", func(l Listener[V]) { l.OnExpired(key, e) })

		if e.Refresh == nil || pass >= maxPasses {
			c.evict(key, e)
			return outcomeEvicted
		}
		e.now = now
		c.runRefresh(key, e)
		refreshed = true
	}
}

// evict 仅当 map 中仍是 e 时删除，避免误删检查期间被重新写入或清空后的新条目。
func (c *Cache[V]) evict(key string, e *Entry[V]) {
	c.mu.Lock()
	cur, ok := c.items[key]
	removed := ok && cur == e
	if removed {
		delete(c.items, key)
	}
	c.mu.Unlock()

	if !removed {
		return
	}
	c.logger.Debug(context.Background(), "xttl: entry evicted", slog.String("key", key))
	c.listeners.each("del", func(l Listener[V]) { l.OnDel(key) })
}

// runRefresh 调用刷新函数，panic 时按未续期处理并返回 false。
func (c *Cache[V]) runRefresh(key string, e *Entry[V]) (ok bool) {
	fn := e.Refresh
	if fn == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			c.emitError(fmt.Errorf("%w: key %q: %v", ErrRefreshPanic, key, r))
		}
	}()
	fn(e)
	return true
}
