// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、文件轮转）
//   - 强制 context 传递，方法签名只接受 slog.Attr
//   - 动态级别调整（运行时热更新）
//   - 丢弃一切输出的 [Discard]，作为组件的默认 Logger
//
// # 创建 Logger
//
// Builder 遵循 first-error-wins：遇到第一个配置错误后，Build 返回该错误。
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xttl.log", xlog.RotationOptions{MaxSizeMB: 100}).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 派生 Logger
//
// [Logger.With] 和 [Logger.WithGroup] 返回的派生 logger 共享父级的 LevelVar，
// 动态级别变更会同步生效。
package xlog
