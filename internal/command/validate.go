package command

import (
	"fmt"
	"io"

	"rhizo-cli/internal/config"
	"rhizo-cli/internal/tools"
	"rhizo-cli/internal/types"
)

// ValidateConfig 解析并校验路由配置，不访问网络
func ValidateConfig(path string, out io.Writer) error {
	rc, err := config.LoadRouteConfig(path)
	if err != nil {
		return err
	}
	route, err := rc.ToRoute(types.ContentHash{})
	if err != nil {
		return err
	}
	renderRouteConfig(out, route)
	return nil
}

// ValidateModule 本地预检：可读、WASM 头、gzip 大小。
// 运行时级别的校验（导出 _start 等）需要 WASM 运行时。
func ValidateModule(path string, out io.Writer) error {
	source, err := readModule(path)
	if err != nil {
		return err
	}
	if err := tools.CheckWasmHeader(source); err != nil {
		return err
	}
	size, err := tools.CheckModuleSize(source)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "WASM file %s passed local preflight (%d bytes, %d bytes gzipped, cid %s)\n",
		path, len(source), size, tools.ModuleCID(source))
	return nil
}

// TestModule 需要执行模块，本程序没有运行时
func TestModule(path string) error {
	if _, err := readModule(path); err != nil {
		return err
	}
	return fmt.Errorf("test-module %s: %w", path, ErrRuntimeUnavailable)
}
