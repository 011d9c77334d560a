package xlog

import (
	"io"
	"log/slog"
	"sync/atomic"
)

// Discard 返回丢弃所有输出的 Logger，是各组件未注入 Logger 时的默认值。
func Discard() LoggerWithLevel {
	return newFallback(io.Discard)
}

func newFallback(w io.Writer) *xlogger {
	levelVar := new(slog.LevelVar)
	return &xlogger{
		handler:    slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}),
		levelVar:   levelVar,
		errorCount: new(atomic.Uint64),
		inOnError:  new(atomic.Bool),
	}
}
