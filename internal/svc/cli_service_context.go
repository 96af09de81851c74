package svc

import (
	"context"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"rhizo-cli/internal/config"
	"rhizo-cli/internal/logic/composer"
	"rhizo-cli/internal/logic/core"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/logic/pda"
	"rhizo-cli/internal/logic/reader"
	"rhizo-cli/internal/pkg/logger"
	"rhizo-cli/internal/service"
	"rhizo-cli/internal/types"
)

// Uploader 模块托管后端
type Uploader interface {
	Upload(ctx context.Context, deploy domain.RouteDeploy) (string, error)
}

// CliServiceContext 一次命令执行所需的全部资源，命令之间不共享
type CliServiceContext struct {
	Config   *config.CliConfig
	Signer   sdktypes.Account
	Owner    types.Pubkey
	Ledger   core.Ledger
	Deriver  *pda.Deriver
	Planner  *composer.Planner
	Composer *composer.Composer
	Reader   *reader.AccountReader
	Ingest   Uploader
}

// Deps 可替换的外部协作者，测试中注入内存实现
type Deps struct {
	Ledger    core.Ledger
	Signer    sdktypes.Account
	Confirmer composer.Confirmer
	Ingest    Uploader
}

// NewCliServiceContext 读取 Solana CLI 身份并连接 RPC
func NewCliServiceContext(c *config.CliConfig, confirmer composer.Confirmer) (*CliServiceContext, error) {
	solana, err := config.LoadSolanaCliConfig(c.SolanaConfigPath)
	if err != nil {
		logger.Errorf("[CliServiceContext] Solana CLI 配置读取失败: %v", err)
		return nil, err
	}
	signer, err := config.LoadKeypair(solana.KeypairPath)
	if err != nil {
		logger.Errorf("[CliServiceContext] keypair 读取失败: %v", err)
		return nil, err
	}

	endpoint := solana.JsonRpcURL
	if c.RpcURL != "" {
		endpoint = c.RpcURL
	}
	ledger, err := service.NewRpcLedgerService(service.RpcLedgerOption{
		Endpoint:       endpoint,
		ConfirmTimeout: c.ConfirmTimeout(),
		PollInterval:   c.ConfirmPollInterval(),
	})
	if err != nil {
		return nil, err
	}
	ingest := service.NewIngestService(service.IngestOption{
		Endpoint: c.IngestConf.Endpoint,
		Timeout:  c.IngestTimeout(),
	})

	logger.Infof("[CliServiceContext] rpc=%s ingest=%s program=%s", endpoint, ingest.Endpoint(), c.ProgramID)
	return NewCliServiceContextWith(c, Deps{
		Ledger:    ledger,
		Signer:    signer,
		Confirmer: confirmer,
		Ingest:    ingest,
	}), nil
}

func NewCliServiceContextWith(c *config.CliConfig, deps Deps) *CliServiceContext {
	owner := types.PubkeyFromSdk(deps.Signer.PublicKey)
	deriver := pda.NewDeriver(c.Program())
	return &CliServiceContext{
		Config:   c,
		Signer:   deps.Signer,
		Owner:    owner,
		Ledger:   deps.Ledger,
		Deriver:  deriver,
		Planner:  composer.NewPlanner(deriver, deps.Ledger, owner),
		Composer: composer.NewComposer(deps.Ledger, deps.Confirmer, deps.Signer),
		Reader:   reader.NewAccountReader(deps.Ledger, deriver, owner),
		Ingest:   deps.Ingest,
	}
}
