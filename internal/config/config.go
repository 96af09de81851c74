package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/zeromicro/go-zero/core/conf"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/pkg/logger"
	"rhizo-cli/internal/types"
)

// ConfigError 本地配置不可用，在任何网络调用之前失败
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid config: %v", e.Err)
	}
	return fmt.Sprintf("invalid config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type LogConfig struct {
	Format   string `json:"format,default=console"` // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,optional"`       // 日志目录，为空时只写 stderr
	Level    string `json:"level,default=warn"`     // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional"`      // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// IngestConfig 模块托管后端
type IngestConfig struct {
	Endpoint  string `json:"endpoint,optional"`   // 为空时使用默认地址
	TimeoutMs int    `json:"timeout_ms,optional"` // 上传超时（毫秒）
}

// TimeConfig 交易确认相关的时间配置（单位：毫秒）
type TimeConfig struct {
	ConfirmTimeoutMs      int `json:"confirm_timeout_ms,optional"`       // 提交后等待确认的最长时间
	ConfirmPollIntervalMs int `json:"confirm_poll_interval_ms,optional"` // 轮询签名状态的间隔
}

// CliConfig 工具自身的配置（etc/rhizo.yaml），签名身份与 RPC 地址来自 Solana CLI 配置
type CliConfig struct {
	LogConf    LogConfig    `json:"logger,optional"`
	IngestConf IngestConfig `json:"ingest,optional"`
	TimeConf   TimeConfig   `json:"time_conf,optional"`

	ProgramID        string `json:"program_id,optional"`         // 目标程序 id，测试网络可替换
	SolanaConfigPath string `json:"solana_config_path,optional"` // 为空时使用 ~/.config/solana/cli/config.yml
	RpcURL           string `json:"rpc_url,optional"`            // 覆盖 Solana CLI 配置中的 json_rpc_url
}

// LoadCliConfig 读取配置文件；文件不存在且 allowMissing 时全部使用默认值
func LoadCliConfig(path string, allowMissing bool) (*CliConfig, error) {
	var c CliConfig
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) || !allowMissing {
			return nil, &ConfigError{Path: path, Err: err}
		}
		if err := conf.FillDefault(&c); err != nil {
			return nil, &ConfigError{Path: path, Err: err}
		}
	} else if err := conf.Load(path, &c); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return &c, nil
}

func (c *CliConfig) applyDefaults() {
	if c.LogConf.Format == "" {
		c.LogConf.Format = "console"
	}
	if c.LogConf.Level == "" {
		c.LogConf.Level = "warn"
	}
	if c.ProgramID == "" {
		c.ProgramID = consts.RhizoProgramStr
	}
	if c.IngestConf.Endpoint == "" {
		c.IngestConf.Endpoint = consts.DefaultIngestEndpoint
	}
}

func (c *CliConfig) validate() error {
	if _, err := types.TryPubkeyFromBase58(c.ProgramID); err != nil {
		return fmt.Errorf("program_id %q: %w", c.ProgramID, err)
	}
	if c.IngestConf.TimeoutMs < 0 || c.TimeConf.ConfirmTimeoutMs < 0 || c.TimeConf.ConfirmPollIntervalMs < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

func (c *CliConfig) Program() types.Pubkey {
	pk, _ := types.TryPubkeyFromBase58(c.ProgramID)
	return pk
}

func (c *CliConfig) IngestTimeout() time.Duration {
	return msOr(c.IngestConf.TimeoutMs, consts.DefaultIngestTimeout)
}

func (c *CliConfig) ConfirmTimeout() time.Duration {
	return msOr(c.TimeConf.ConfirmTimeoutMs, consts.DefaultConfirmTimeout)
}

func (c *CliConfig) ConfirmPollInterval() time.Duration {
	return msOr(c.TimeConf.ConfirmPollIntervalMs, consts.DefaultConfirmPollInterval)
}

func msOr(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
