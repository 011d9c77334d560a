package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// executor 执行单条交互命令。
type executor interface {
	Execute(ctx context.Context, command string, args []string) (string, error)
}

// startInputReader 启动输入读取 goroutine。
// inputCh 无缓冲，发送端用 select 保护，ctx 取消后 goroutine 不会永久阻塞在发送上。
func startInputReader(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	inputCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(inputCh)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- err
		}
	}()

	return inputCh, errCh
}

// runREPL 运行交互循环，exit/quit 或输入结束时返回 errQuit，ctx 取消时返回 ctx.Err()。
func runREPL(ctx context.Context, exec executor, in io.Reader, out io.Writer) error {
	inputCh, errCh := startInputReader(ctx, in)

	for {
		fmt.Fprint(out, "xttl> ")

		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case err := <-errCh:
			return fmt.Errorf("read input: %w", err)
		case line, ok := <-inputCh:
			if !ok {
				select {
				case err := <-errCh:
					return fmt.Errorf("read input: %w", err)
				default:
				}
				fmt.Fprintln(out)
				return errQuit
			}
			if processLine(ctx, exec, strings.TrimSpace(line), out) {
				return errQuit
			}
		}
	}
}

// processLine 处理单行输入，返回 true 表示应该退出。
func processLine(ctx context.Context, exec executor, line string, out io.Writer) bool {
	if line == "" {
		return false
	}
	if line == "quit" || line == "exit" {
		fmt.Fprintln(out, "bye")
		return true
	}

	parts := parseCommandLine(line)
	if len(parts) == 0 {
		return false
	}

	resp, err := exec.Execute(ctx, parts[0], parts[1:])
	if err != nil {
		fmt.Fprintf(out, "(error) %v\n", err)
		return false
	}
	if resp != "" {
		fmt.Fprintln(out, resp)
	}
	return false
}

// parseCommandLine 解析命令行，支持引号和反斜杠转义，仅空格分词。
func parseCommandLine(line string) []string {
	var (
		parts     []string
		current   strings.Builder
		inQuote   bool
		quoteChar rune
		escaped   bool
	)

	for _, r := range line {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}

		switch {
		case (r == '"' || r == '\'') && !inQuote:
			inQuote = true
			quoteChar = r
		case inQuote && r == quoteChar:
			inQuote = false
			quoteChar = 0
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
