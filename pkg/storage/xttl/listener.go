package xttl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xttl/pkg/observability/xlog"
)

// Listener 接收缓存生命周期通知。
//
// 通知同步投递、不关心返回：OnPush 在写入成功后，OnGet 在读取得到值后，
// OnDel 在每个被删除的 key 上，OnClear 在清空后，OnExpired 在检测到过期、
// 刷新或删除之前，OnError 在配置无效或写入被拒绝时。
//
// OnPush/OnExpired 以及刷新函数或生产函数 panic 引起的 OnError 在该 key 的
// 锁内调用，回调中不得对同一 key 调用缓存方法。
// 回调 panic 会被恢复并记录日志，不会影响缓存操作。
type Listener[V any] interface {
	OnPush(key string, e *Entry[V])
	OnGet(key string, value V)
	OnDel(key string)
	OnClear()
	OnExpired(key string, e *Entry[V])
	OnError(err error)
}

// ListenerFuncs 以可选函数字段实现 Listener，未设置的字段忽略对应通知。
type ListenerFuncs[V any] struct {
	Push    func(key string, e *Entry[V])
	Get     func(key string, value V)
	Del     func(key string)
	Clear   func()
	Expired func(key string, e *Entry[V])
	Error   func(err error)
}

var _ Listener[int] = ListenerFuncs[int]{}

func (f ListenerFuncs[V]) OnPush(key string, e *Entry[V]) {
	if f.Push != nil {
		f.Push(key, e)
	}
}

func (f ListenerFuncs[V]) OnGet(key string, value V) {
	if f.Get != nil {
		f.Get(key, value)
	}
}

func (f ListenerFuncs[V]) OnDel(key string) {
	if f.Del != nil {
		f.Del(key)
	}
}

func (f ListenerFuncs[V]) OnClear() {
	if f.Clear != nil {
		f.Clear()
	}
}

func (f ListenerFuncs[V]) OnExpired(key string, e *Entry[V]) {
	if f.Expired != nil {
		f.Expired(key, e)
	}
}

func (f ListenerFuncs[V]) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

type subscription[V any] struct {
	id uint64
	l  Listener[V]
}

// listeners 是写时复制的监听器表，投递时无锁读取快照。
type listeners[V any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   atomic.Pointer[[]subscription[V]]
	logger xlog.Logger
}

func (ls *listeners[V]) add(l Listener[V]) (remove func()) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.nextID++
	id := ls.nextID
	next := append(ls.snapshot(), subscription[V]{id: id, l: l})
	ls.subs.Store(&next)

	var once sync.Once
	return func() {
		once.Do(func() { ls.remove(id) })
	}
}

func (ls *listeners[V]) remove(id uint64) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	cur := ls.snapshot()
	next := make([]subscription[V], 0, len(cur))
	for _, s := range cur {
		if s.id != id {
			next = append(next, s)
		}
	}
	ls.subs.Store(&next)
}

// snapshot 返回当前监听器的拷贝。
func (ls *listeners[V]) snapshot() []subscription[V] {
	p := ls.subs.Load()
	if p == nil {
		return nil
	}
	return append([]subscription[V](nil), (*p)...)
}

// each 依次投递通知，单个监听器 panic 不影响其他监听器。
func (ls *listeners[V]) each(event string, fn func(Listener[V])) {
	p := ls.subs.Load()
	if p == nil {
		return
	}
	for _, s := range *p {
		ls.deliver(event, s.l, fn)
	}
}

func (ls *listeners[V]) deliver(event string, l Listener[V], fn func(Listener[V])) {
	defer func() {
		if r := recover(); r != nil {
			ls.logger.Error(context.Background(), "xttl: listener panicked",
				slog.String("event", event),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	fn(l)
}
