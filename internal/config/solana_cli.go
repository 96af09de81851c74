package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/zeromicro/go-zero/core/jsonx"
	"gopkg.in/yaml.v3"
)

const solanaConfigRelPath = ".config/solana/cli/config.yml"

// SolanaCliConfig Solana CLI 的 config.yml，只取本工具需要的字段
type SolanaCliConfig struct {
	JsonRpcURL  string `yaml:"json_rpc_url"`
	KeypairPath string `yaml:"keypair_path"`
	Commitment  string `yaml:"commitment"`
}

func DefaultSolanaConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to find home dir: %w", err)
	}
	return filepath.Join(home, solanaConfigRelPath), nil
}

func LoadSolanaCliConfig(path string) (*SolanaCliConfig, error) {
	if path == "" {
		p, err := DefaultSolanaConfigPath()
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("unable to read Solana config: %w", err)}
	}

	var c SolanaCliConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("unable to parse Solana config as yaml: %w", err)}
	}
	if c.JsonRpcURL == "" {
		return nil, &ConfigError{Path: path, Err: errors.New("json_rpc_url is missing")}
	}
	if c.KeypairPath == "" {
		return nil, &ConfigError{Path: path, Err: errors.New("keypair_path is missing")}
	}
	c.KeypairPath = expandHome(c.KeypairPath)
	return &c, nil
}

// LoadKeypair 读取 solana-keygen 生成的 JSON 数组（64 字节：私钥 + 公钥）
func LoadKeypair(path string) (sdktypes.Account, error) {
	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return sdktypes.Account{}, &ConfigError{Path: path, Err: fmt.Errorf("unable to read keypair: %w", err)}
	}

	var ints []int
	if err := jsonx.Unmarshal(data, &ints); err != nil {
		return sdktypes.Account{}, &ConfigError{Path: path, Err: fmt.Errorf("keypair is not a JSON byte array: %w", err)}
	}
	raw := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return sdktypes.Account{}, &ConfigError{Path: path, Err: fmt.Errorf("keypair byte %d out of range: %d", i, v)}
		}
		raw[i] = byte(v)
	}

	account, err := sdktypes.AccountFromBytes(raw)
	if err != nil {
		return sdktypes.Account{}, &ConfigError{Path: path, Err: fmt.Errorf("invalid keypair: %w", err)}
	}
	return account, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
