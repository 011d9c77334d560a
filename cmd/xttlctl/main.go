// xttlctl 加载配置文件并运行一个交互式的 TTL 存储，用于试验过期、刷新与清扫行为。
//
// 用法:
//
//	xttlctl [全局选项]
//
// 全局选项:
//
//	-c, --config      配置文件路径（.yaml/.yml/.json），缓存配置位于 cache 段
//	    --log-level   日志级别 (debug/info/warn/error，默认 info)
//	    --log-format  日志格式 (text/json，默认 text)
//	    --log-file    日志文件路径，设置后按大小轮转
//	-w, --watch       监视配置文件，变更后重新应用 sweepPeriod
//
// 交互命令:
//
//	push <key> <value> [ttl]   写入，ttl 为整数秒或时长（如 1m30s）
//	get <key>...               读取，多个 key 时逐行输出
//	del <key>...               删除，输出实际删除数量
//	size | keys | clear        条目数 / 所有 key / 清空
//	sweep                      立即执行一次清扫
//	config                     查看生效配置
//	stats                      清扫与批量读取的次数和平均耗时
//	help | exit
//
// 退出码:
//
//	0: 正常退出（exit、EOF 或信号）
//	1: 运行失败（配置加载失败等）
//	2: 参数错误
//
// 配置示例:
//
//	cache:
//	  ttl: 60            # 秒
//	  sweepPeriod: 1000  # 毫秒
//	  lastUsage: true
//	log:
//	  level: debug
//	  addSource: true
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// createApp 创建 CLI 应用。
func createApp(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xttlctl",
		Usage:     "交互式 TTL 存储",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（.yaml/.yml/.json）",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件路径，未设置时输出到 stderr",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "监视配置文件并热更新清扫周期",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() > 0 {
				return &usageError{msg: fmt.Sprintf("unexpected arguments: %v", cmd.Args().Slice())}
			}
			return runSession(ctx, flagsFrom(cmd), stdin, stdout, stderr)
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一映射退出码。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := createApp(stdin, stdout, stderr)

	if err := app.Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if isCLIUsageError(err) {
			return 2
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
