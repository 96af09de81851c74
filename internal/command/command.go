// Package command 各 CLI 子命令的实现。每个命令独立执行，失败即返回，不做重试。
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"rhizo-cli/internal/config"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/logic/reader"
	"rhizo-cli/internal/pkg/logger"
	"rhizo-cli/internal/svc"
	"rhizo-cli/internal/tools"
)

// ErrRuntimeUnavailable 本程序不内置 WASM 运行时
var ErrRuntimeUnavailable = errors.New("WASM runtime is not available in this build")

func readModule(path string) ([]byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read WASM module %s: %w", path, err)
	}
	return source, nil
}

// Deploy 本地预检 → 链上注册并写入路由 → 上传模块
func Deploy(ctx context.Context, sc *svc.CliServiceContext, wasmPath, configPath string, out io.Writer) error {
	rc, err := config.LoadRouteConfig(configPath)
	if err != nil {
		return err
	}
	source, err := readModule(wasmPath)
	if err != nil {
		return err
	}
	if _, err := tools.CheckModuleSize(source); err != nil {
		return err
	}
	cid := tools.ModuleCID(source)
	route, err := rc.ToRoute(cid)
	if err != nil {
		return err
	}
	logger.Infof("[Deploy] route=%s cid=%s module=%d bytes", route.Name, cid, len(source))

	plan, err := sc.Planner.DeployRoute(route)
	if err != nil {
		return err
	}
	res, err := sc.Composer.Execute(ctx, plan)
	if err != nil {
		return err
	}
	renderResult(out, res)

	resp, err := sc.Ingest.Upload(ctx, domain.RouteDeploy{Metadata: route, Source: source})
	if err != nil {
		// 链上路由已写入，重新执行 deploy 会覆盖
		return fmt.Errorf("route %s is on-chain but module upload failed: %w", route.Name, err)
	}
	logger.Infof("[Deploy] ingest 响应: %s", resp)

	route.BumpSeed = &plan.Target.Bump
	renderRoute(out, &reader.RouteView{Address: plan.Target, Route: &route})
	return nil
}

// Yank 从索引移除并删除路由账户，租金退回 owner
func Yank(ctx context.Context, sc *svc.CliServiceContext, name string, out io.Writer) error {
	plan, err := sc.Planner.YankRoute(ctx, name)
	if err != nil {
		return err
	}
	res, err := sc.Composer.Execute(ctx, plan)
	if err != nil {
		return err
	}
	renderResult(out, res)
	return nil
}

// View 读取单个路由或 SOCB
func View(ctx context.Context, sc *svc.CliServiceContext, collection, key string, out io.Writer) error {
	c, err := reader.ParseCollection(collection)
	if err != nil {
		return err
	}
	switch c {
	case reader.CollectionSocb:
		view, err := sc.Reader.ReadSocb(ctx, key)
		if err != nil {
			return err
		}
		renderSocb(out, view)
	default:
		view, err := sc.Reader.ReadRoute(ctx, key)
		if err != nil {
			return err
		}
		renderRoute(out, view)
	}
	return nil
}

// List 列出 owner 名下的路由或 SOCB
func List(ctx context.Context, sc *svc.CliServiceContext, collection string, out io.Writer) error {
	c, err := reader.ParseCollection(collection)
	if err != nil {
		return err
	}
	idx, err := sc.Reader.ReadIndex(ctx, c)
	if err != nil {
		return err
	}
	renderIndex(out, c, idx)
	return nil
}

// SocbAlloc 分配 size 字节的 SOCB，内容全 0
func SocbAlloc(ctx context.Context, sc *svc.CliServiceContext, key string, size int, out io.Writer) error {
	plan, err := sc.Planner.AllocSocb(key, size)
	if err != nil {
		return err
	}
	res, err := sc.Composer.Execute(ctx, plan)
	if err != nil {
		return err
	}
	renderResult(out, res)
	return nil
}

func SocbWrite(ctx context.Context, sc *svc.CliServiceContext, key string, content []byte, out io.Writer) error {
	plan, err := sc.Planner.WriteSocb(key, content)
	if err != nil {
		return err
	}
	res, err := sc.Composer.Execute(ctx, plan)
	if err != nil {
		return err
	}
	renderResult(out, res)
	return nil
}
