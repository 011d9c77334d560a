package xttl

import "time"

// PushOption 覆盖单次写入的默认配置。
type PushOption func(*pushOptions)

type pushOptions struct {
	ttl        time.Duration
	ttlSet     bool
	refresh    any
	refreshSet bool
}

// PushTTL 指定本次写入的 TTL，0 表示永不过期。
func PushTTL(d time.Duration) PushOption {
	return func(o *pushOptions) {
		o.ttl = d
		o.ttlSet = true
	}
}

// PushRefresh 指定本次写入的刷新函数。fn 为 nil 时沿用缓存的默认刷新函数。
func PushRefresh[V any](fn RefreshFunc[V]) PushOption {
	return func(o *pushOptions) {
		if fn == nil {
			return
		}
		o.refresh = fn
		o.refreshSet = true
	}
}
