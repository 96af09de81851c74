package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/zeromicro/go-zero/core/logx"

	"rhizo-cli/internal/command"
	"rhizo-cli/internal/config"
	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/logic/composer"
	"rhizo-cli/internal/pkg/logger"
	"rhizo-cli/internal/svc"
)

const defaultConfigFile = "etc/rhizo.yaml"

var version = "0.1.0"

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			logger.Sync()
			os.Exit(2)
		}
	}()

	// 命令输出走 stdout，go-zero 自身的日志全部关闭
	logx.Disable()

	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flagSet := pflag.NewFlagSet("rhizo", pflag.ContinueOnError)
	configFile := flagSet.StringP("config", "f", defaultConfigFile, "the tool config file")
	showVersion := flagSet.BoolP("version", "v", false, "print version")
	showHelp := flagSet.BoolP("help", "h", false, "show help")
	flagSet.SetInterspersed(false)

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return 0
		}
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return 1
	}
	args := flagSet.Args()
	if *showVersion || (len(args) > 0 && args[0] == "version") {
		fmt.Printf("rhizo %s\n", version)
		return 0
	}
	if *showHelp || len(args) == 0 || args[0] == "help" {
		printHelp(flagSet)
		return 0
	}

	cfg, err := config.LoadCliConfig(*configFile, !flagSet.Changed("config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return 1
	}
	if err := logger.Init(cfg.LogConf.ToLogOption()); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] logger init failed: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := args[0]
	err = dispatch(ctx, cfg, name, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, composer.ErrCancelled):
		fmt.Fprintln(os.Stderr, err)
		return 0
	default:
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(os.Stderr, "[ERROR] %s: %v\n\n", name, err)
			printHelp(flagSet)
			return 1
		}
		logger.Errorf("[rhizo] %s failed: %v", name, err)
		fmt.Fprintf(os.Stderr, "[ERROR] %s failed: %v\n", name, err)
		return 1
	}
}

func dispatch(ctx context.Context, cfg *config.CliConfig, name string, args []string) error {
	out := os.Stdout

	// 纯本地命令不需要身份与 RPC
	switch name {
	case "validate-config":
		if len(args) != 1 {
			return usagef("usage: validate-config <route_config_path>")
		}
		return command.ValidateConfig(args[0], out)
	case "validate-module":
		if len(args) != 1 {
			return usagef("usage: validate-module <wasm_module_path>")
		}
		return command.ValidateModule(args[0], out)
	case "test-module":
		if len(args) != 1 {
			return usagef("usage: test-module <wasm_module_path>")
		}
		return command.TestModule(args[0])
	case "deploy", "yank", "view", "ls", "socb":
	default:
		return usagef("unknown command %q", name)
	}

	sc, err := svc.NewCliServiceContext(cfg, composer.NewTerminalConfirmer())
	if err != nil {
		return err
	}

	switch name {
	case "deploy":
		if len(args) != 2 {
			return usagef("usage: deploy <wasm_module_path> <route_config_path>")
		}
		return command.Deploy(ctx, sc, args[0], args[1], out)
	case "yank":
		if len(args) != 1 {
			return usagef("usage: yank <route>")
		}
		return command.Yank(ctx, sc, args[0], out)
	case "view":
		if len(args) != 2 {
			return usagef("usage: view route|socb <name>")
		}
		return command.View(ctx, sc, args[0], args[1], out)
	case "ls":
		if len(args) != 1 {
			return usagef("usage: ls route|socb")
		}
		return command.List(ctx, sc, args[0], out)
	default:
		return dispatchSocb(ctx, sc, args)
	}
}

func dispatchSocb(ctx context.Context, sc *svc.CliServiceContext, args []string) error {
	if len(args) < 2 {
		return usagef("usage: socb alloc <key> [size] | socb write <key> <content>")
	}
	switch args[0] {
	case "alloc":
		size := consts.DefaultSocbAllocSize
		if len(args) > 2 {
			n, err := strconv.Atoi(args[2])
			if err != nil || n < 0 {
				return usagef("invalid socb size %q", args[2])
			}
			size = n
		}
		return command.SocbAlloc(ctx, sc, args[1], size, os.Stdout)
	case "write":
		if len(args) != 3 {
			return usagef("usage: socb write <key> <content>")
		}
		return command.SocbWrite(ctx, sc, args[1], []byte(args[2]), os.Stdout)
	default:
		return usagef("unknown socb subcommand %q", args[0])
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `rhizo: deploy and manage routes and signed on-chain bytes.

Usage:
  rhizo [flags] <command> [args]

Commands:
  deploy <wasm_module_path> <route_config_path>   Deploy a route configuration and its WASM module
  yank <route>                                    Remove a route and reclaim its rent
  view route|socb <name>                          Show a deployed route or SOCB
  ls route|socb                                   List routes or SOCBs owned by the configured keypair
  socb alloc <key> [size]                         Allocate a SOCB of size zero bytes (default %d)
  socb write <key> <content>                      Overwrite the contents of a SOCB
  validate-config <route_config_path>             Validate a route configuration file
  validate-module <wasm_module_path>              Run local preflight checks on a WASM module
  test-module <wasm_module_path>                  Execute a WASM module locally
  help                                            Show this help
  version                                         Print version

Flags:
%s`, consts.DefaultSocbAllocSize, flagSet.FlagUsages())
}
