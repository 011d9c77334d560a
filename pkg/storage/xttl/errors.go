package xttl

import "errors"

// 通过 Listener.OnError 通知的错误。核心操作本身不返回 error，
// 调用方通过 bool/计数返回值和错误通知感知失败。
var (
	// ErrInvalidTTL 表示 TTL 配置无效（非整数或为负），已回退为默认值。
	ErrInvalidTTL = errors.New("xttl: ttl is not a non-negative integer")

	// ErrInvalidSweepPeriod 表示清扫周期配置无效，已回退为默认值（禁用）。
	ErrInvalidSweepPeriod = errors.New("xttl: sweep period is not a non-negative integer")

	// ErrInvalidRefreshFunc 表示刷新函数不可调用或类型不匹配，已丢弃。
	ErrInvalidRefreshFunc = errors.New("xttl: refresh function is not a function")

	// ErrInvalidLastUsage 表示 lastUsage 配置不是布尔值，已回退为 false。
	ErrInvalidLastUsage = errors.New("xttl: lastUsage is not a boolean")

	// ErrInvalidListener 表示监听器的值类型与缓存不匹配，已丢弃。
	ErrInvalidListener = errors.New("xttl: listener value type mismatch")

	// ErrMissingValue 表示 Push 既没有值也没有刷新函数。
	ErrMissingValue = errors.New("xttl: push missing a value or a refresh function")

	// ErrRefreshPanic 表示刷新函数 panic，条目按未续期处理。
	ErrRefreshPanic = errors.New("xttl: refresh function panicked")

	// ErrProducerPanic 表示生产函数 panic，本次读取按未命中处理。
	ErrProducerPanic = errors.New("xttl: value producer panicked")

	// ErrClosed 表示缓存已关闭。
	ErrClosed = errors.New("xttl: cache closed")
)
