package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/omeyang/xttl/pkg/storage/xttl"
)

// nilOutput 未命中时的输出。
const nilOutput = "(nil)"

const helpText = `push <key> <value> [ttl]   写入，ttl 为整数秒或时长（如 1m30s）
get <key>...               读取
del <key>...               删除，输出实际删除数量
size                       条目数（含未检查到的过期条目）
keys                       所有 key
clear                      清空
sweep                      立即执行一次清扫
config                     查看生效配置
stats                      清扫与批量读取的次数和平均耗时
help                       显示帮助
exit | quit                退出`

// reporter 提供 stats 命令的输出。
type reporter interface {
	Report(ctx context.Context) (string, error)
}

// shell 在缓存上执行交互命令。
type shell struct {
	cache *xttl.Cache[string]
	stats reporter
	out   io.Writer
}

// newShell 创建 shell，stats 为 nil 时 stats 命令提示未启用。
func newShell(cache *xttl.Cache[string], stats reporter, out io.Writer) *shell {
	return &shell{cache: cache, stats: stats, out: out}
}

// Execute 执行一条命令并返回输出。参数错误返回 *usageError。
func (s *shell) Execute(ctx context.Context, command string, args []string) (string, error) {
	switch strings.ToLower(command) {
	case "push", "set":
		return s.push(ctx, args)
	case "get":
		return s.get(ctx, args)
	case "del":
		if len(args) == 0 {
			return "", &usageError{msg: "usage: del <key>..."}
		}
		return fmt.Sprintf("(integer) %d", s.cache.Del(ctx, args...)), nil
	case "size":
		return fmt.Sprintf("(integer) %d", s.cache.Size()), nil
	case "keys":
		keys := s.cache.Keys()
		if len(keys) == 0 {
			return "(empty)", nil
		}
		slices.Sort(keys)
		return strings.Join(keys, "\n"), nil
	case "clear":
		s.cache.Clear()
		return "OK", nil
	case "sweep":
		st := s.cache.Sweep(ctx)
		return fmt.Sprintf("checked=%d refreshed=%d evicted=%d", st.Checked, st.Refreshed, st.Evicted), nil
	case "config":
		cfg := s.cache.Options()
		return fmt.Sprintf("ttl=%s sweepPeriod=%s lastUsage=%t refresh=%t",
			cfg.TTL, cfg.SweepPeriod, cfg.LastUsage, cfg.Refresh != nil), nil
	case "stats":
		if s.stats == nil {
			return "metrics disabled", nil
		}
		return s.stats.Report(ctx)
	case "help":
		return helpText, nil
	default:
		return "", &usageError{msg: fmt.Sprintf("unknown command %q, type 'help'", command)}
	}
}

func (s *shell) push(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 || len(args) > 3 {
		return "", &usageError{msg: "usage: push <key> <value> [ttl]"}
	}
	var opts []xttl.PushOption
	if len(args) == 3 {
		ttl, err := parseTTL(args[2])
		if err != nil {
			return "", &usageError{msg: err.Error()}
		}
		opts = append(opts, xttl.PushTTL(ttl))
	}
	if !s.cache.Set(ctx, args[0], args[1], opts...) {
		return "", fmt.Errorf("push %q rejected", args[0])
	}
	return "OK", nil
}

func (s *shell) get(ctx context.Context, args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", &usageError{msg: "usage: get <key>..."}
	case 1:
		v, ok := s.cache.Get(ctx, args[0])
		if !ok {
			return nilOutput, nil
		}
		return strconv.Quote(v), nil
	}

	values := s.cache.GetMulti(ctx, args)
	lines := make([]string, 0, len(args))
	for _, k := range args {
		v := nilOutput
		if p := values[k]; p != nil {
			v = strconv.Quote(*p)
		}
		lines = append(lines, k+" => "+v)
	}
	return strings.Join(lines, "\n"), nil
}

// parseTTL 解析整数秒或 Go 时长字符串。
func parseTTL(s string) (time.Duration, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative ttl %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative ttl %s", d)
	}
	return d, nil
}
