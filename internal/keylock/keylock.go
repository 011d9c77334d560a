package keylock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards 默认分片数。
const DefaultShards = 32

// Locker 按 key 串行化访问。零值不可用，必须通过 [New] 创建。
type Locker struct {
	shards []shard
	mask   uint64
	count  atomic.Int64
	closed atomic.Bool
	done   chan struct{}
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// entry 的 ch 容量为 1，用作互斥量。
// refs 统计持有者与等待者数量，归零时从分片删除。
type entry struct {
	ch   chan struct{}
	refs int32
}

// New 创建 Locker。shards 非 2 的幂或 <= 0 时使用 DefaultShards。
func New(shards int) *Locker {
	if shards <= 0 || shards&(shards-1) != 0 {
		shards = DefaultShards
	}
	l := &Locker{
		shards: make([]shard, shards),
		mask:   uint64(shards - 1),
		done:   make(chan struct{}),
	}
	for i := range l.shards {
		l.shards[i].entries = make(map[string]*entry)
	}
	return l
}

func (l *Locker) shardFor(key string) *shard {
	return &l.shards[xxhash.Sum64String(key)&l.mask]
}

func (l *Locker) ref(key string) (*entry, error) {
	s := l.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.closed.Load() {
		return nil, ErrClosed
	}
	e, ok := s.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		s.entries[key] = e
		l.count.Add(1)
	}
	e.refs++
	return e, nil
}

func (l *Locker) unref(key string, e *entry) {
	s := l.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(s.entries, key)
		l.count.Add(-1)
	}
}

// Lock 阻塞直到获得 key 的锁、ctx 结束或 Locker 关闭。
// 成功时返回的 unlock 函数只生效一次，重复调用为空操作。
func (l *Locker) Lock(ctx context.Context, key string) (unlock func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := l.ref(key)
	if err != nil {
		return nil, err
	}

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	case <-l.done:
		l.unref(key, e)
		return nil, ErrClosed
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.unref(key, e)
		})
	}, nil
}

// Len 返回当前被持有或等待中的 key 数量。
func (l *Locker) Len() int {
	return int(max(l.count.Load(), 0))
}

// Close 关闭 Locker，幂等。已持有的锁不受影响，仍需调用 unlock 释放。
func (l *Locker) Close() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.done)
	}
}
