package xttl

import "time"

// RefreshFunc 在条目过期时被调用，可以原地修改条目（例如重置 Value 和
// CreateTime）来续期，而不是被删除。
//
// 刷新函数在该 key 的锁内同步执行：不得对同一 key 调用缓存方法（会阻塞到
// ctx 结束），也不应长时间阻塞。没有超时保护，阻塞会卡住该 key 的检查以及
// 清扫中排在其后的 key。
type RefreshFunc[V any] func(e *Entry[V])

// Entry 是一个 key 对应的存储单元。
//
// 时间戳是缓存单调时钟的读数（自缓存创建起经过的时间），与挂钟无关。
// Entry 只应在刷新函数和监听器回调中读写，回调返回后不要保留引用。
type Entry[V any] struct {
	// Key 查找标识，在缓存内唯一。
	Key string
	// Value 直接值或生产函数。
	Value Value[V]
	// CreateTime 写入时刻，刷新函数可以重置它来续期。
	CreateTime time.Duration
	// LastUsage 最近一次成功读取的时刻。
	LastUsage time.Duration
	// TTL 生存时间，<= 0 表示永不过期。
	TTL time.Duration
	// Refresh 过期时调用的刷新函数，可为 nil。
	Refresh RefreshFunc[V]

	now time.Duration
}

// Now 返回交给刷新函数时的时钟读数。
func (e *Entry[V]) Now() time.Duration {
	return e.now
}

// Renew 设置新值并把两个时间戳重置为 Now()，是刷新函数最常见的写法：
//
//	func(e *xttl.Entry[string]) { e.Renew(xttl.Raw(fetch(e.Key))) }
func (e *Entry[V]) Renew(v Value[V]) {
	e.Value = v
	e.CreateTime = e.now
	e.LastUsage = e.now
}

// reference 返回过期判断的起点。
func (e *Entry[V]) reference(lastUsage bool) time.Duration {
	if lastUsage {
		return e.LastUsage
	}
	return e.CreateTime
}

// expired 报告在 now 时刻条目是否已过期；恰好等于 TTL 时仍有效。
func (e *Entry[V]) expired(now time.Duration, lastUsage bool) bool {
	if e.TTL <= 0 {
		return false
	}
	return now-e.reference(lastUsage) > e.TTL
}
