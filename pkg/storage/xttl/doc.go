// Package xttl 提供带过期时间的进程内 KV 存储。
//
// 每个条目可以有自己的 TTL 与刷新函数。过期检查在读取时惰性进行，也可以
// 由后台清扫周期性进行：条目过期后若有刷新函数则调用一次并重新检查，
// 续期成功则保留，否则删除。重试只有一次。
//
// # 基本用法
//
//	c := xttl.New[string](
//	    xttl.WithTTL(5*time.Minute),
//	    xttl.WithSweepPeriod(time.Minute),
//	)
//	defer c.Close()
//
//	c.Set(ctx, "greeting", "hello")
//	v, ok := c.Get(ctx, "greeting")
//
// # 值与生产函数
//
// [Value] 是直接值 [Raw] 与生产函数 [Producer] 的显式变体；生产函数在每次
// 读取时于该 key 的锁内调用，panic 按未命中处理。没有值但有刷新函数的写入会在插入前调用一次刷新函数：
//
//	c.Push(ctx, "user:1", xttl.None[User](), xttl.PushRefresh[User](func(e *xttl.Entry[User]) {
//	    e.Renew(xttl.Raw(loadUser(e.Key)))
//	}))
//
// # 时钟
//
// 时间戳与 TTL 都是单调时钟读数（自缓存创建起经过的时间），不受挂钟调整
// 影响。测试中可以通过 [WithClock] 注入可控时钟。
//
// # 并发
//
// 同一 key 的写入、删除与过期检查串行执行。刷新函数与 OnPush/OnExpired
// 监听器在该 key 的锁内调用，不得对同一 key 调用缓存方法；刷新函数没有
// 超时保护，阻塞会卡住该 key 的检查以及同一轮清扫中其后的 key。
//
// # 通知
//
// 配置错误与被拒绝的写入不返回 error，而是通过 [Listener.OnError] 通知并
// 记录 warn 日志；调用方通过 bool/计数返回值感知失败。
package xttl
