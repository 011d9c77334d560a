// Package xrun 提供基于 errgroup + context 的进程生命周期管理。
//
// 当任一服务返回错误或收到终止信号时，context 会被取消，
// 所有服务应该监听 ctx.Done() 并退出。
//
//	err := xrun.Run(ctx,
//	    xrun.Ticker(time.Minute, false, sweep),
//	    repl.Run,
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常的信号退出
//	}
//
// [Ticker] 是周期执行的服务函数，xttl 的过期清扫即基于它。
// [WithSignals] 替换 Run 监听的信号集合。
package xrun
