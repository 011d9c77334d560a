package xttl

import "time"

// Clock 提供单调递增的时钟读数（"uptime"）。
// 所有条目时间戳和 TTL 都使用同一单位：time.Duration。
type Clock interface {
	Now() time.Duration
}

// uptimeClock 以创建时刻为原点，time.Since 使用单调时钟读数，不受挂钟调整影响。
type uptimeClock struct {
	start time.Time
}

func newUptimeClock() uptimeClock {
	return uptimeClock{start: time.Now()}
}

func (c uptimeClock) Now() time.Duration {
	return time.Since(c.start)
}
