package main

import (
	"errors"
	"strings"
)

// usageError 表示参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// errQuit 表示用户主动退出 REPL，不视为失败。
var errQuit = errors.New("xttlctl: quit")

// cliUsagePrefixes 是 urfave/cli 与 flag 包产生的参数错误前缀。
var cliUsagePrefixes = []string{
	"flag provided but not defined",
	"invalid value",
	"flag needs an argument",
	"no help topic for",
}

// isCLIUsageError 判断是否为 CLI 框架产生的参数错误。
func isCLIUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, p := range cliUsagePrefixes {
		if strings.HasPrefix(msg, p) {
			return true
		}
	}
	return false
}
