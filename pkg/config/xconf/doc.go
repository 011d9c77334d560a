// Package xconf 基于 koanf 的配置加载，支持 YAML/JSON 与文件变更监视。
//
// 只提供增值功能，基础读取请直接使用 Client() 返回的 koanf 实例。
//
//	cfg, err := xconf.New("/etc/xttl/config.yaml")
//	if err != nil {
//		return err
//	}
//	raw := cfg.Raw()                       // map[string]any，交给 xttl.OptionsFromMap
//	w, _ := xconf.Watch(cfg, onChange)     // 文件变更时自动 Reload 并回调
//	g.Go(w.Run)                            // 作为 xrun 服务运行
package xconf
