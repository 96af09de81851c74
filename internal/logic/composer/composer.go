package composer

import (
	"context"
	"errors"
	"fmt"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"rhizo-cli/internal/logic/core"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/logic/txerror"
	"rhizo-cli/internal/pkg/logger"
)

// ErrCancelled 操作者拒绝确认，没有任何交易被提交
var ErrCancelled = errors.New("cancelled by user")

// Estimate 提交前的费用估算
type Estimate struct {
	Operation      Operation
	Target         string
	Blockhash      string
	FeeLamports    uint64
	RentLamports   uint64
	RefundLamports uint64
}

// Result 成功提交后的结果
type Result struct {
	Signature string
	Estimate  Estimate
}

// Composer 估算 → 确认 → 签名 → 提交，一次只处理一笔交易
type Composer struct {
	ledger    core.Ledger
	confirmer Confirmer
	signer    sdktypes.Account
}

func NewComposer(ledger core.Ledger, confirmer Confirmer, signer sdktypes.Account) *Composer {
	return &Composer{ledger: ledger, confirmer: confirmer, signer: signer}
}

func (c *Composer) message(blockhash string, ixs []domain.Instruction) sdktypes.Message {
	return sdktypes.NewMessage(sdktypes.NewMessageParam{
		FeePayer:        c.signer.PublicKey,
		RecentBlockhash: blockhash,
		Instructions:    domain.InstructionsToSdk(ixs),
	})
}

// Estimate 查询最新 blockhash、消息手续费与新账户的租金豁免额
func (c *Composer) Estimate(ctx context.Context, plan *Plan) (Estimate, error) {
	est := Estimate{
		Operation:      plan.Operation,
		Target:         plan.Target.String(),
		RefundLamports: plan.Refund,
	}

	blockhash, err := c.ledger.GetLatestBlockhash(ctx)
	if err != nil {
		return est, fmt.Errorf("get latest blockhash: %w", err)
	}
	est.Blockhash = blockhash

	fee, err := c.ledger.GetFeeForMessage(ctx, c.message(blockhash, plan.Instructions))
	if err != nil {
		return est, fmt.Errorf("get fee for message: %w", err)
	}
	est.FeeLamports = fee

	if plan.RentDataLen > 0 {
		rent, err := c.ledger.GetMinimumBalanceForRentExemption(ctx, plan.RentDataLen)
		if err != nil {
			return est, fmt.Errorf("get minimum balance for rent exemption: %w", err)
		}
		est.RentLamports = rent
	}
	return est, nil
}

// Execute 完整执行一个 Plan。拒绝确认返回 ErrCancelled，链上失败经错误翻译后返回。
func (c *Composer) Execute(ctx context.Context, plan *Plan) (*Result, error) {
	est, err := c.Estimate(ctx, plan)
	if err != nil {
		return nil, err
	}
	logger.Infof("[Composer] %s %s: fee=%d rent=%d refund=%d",
		plan.Operation, est.Target, est.FeeLamports, est.RentLamports, est.RefundLamports)

	ok, err := c.confirmer.Confirm(est)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCancelled
	}

	// 确认提示可能超过 blockhash 的有效期，签名前重新获取
	blockhash, err := c.ledger.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}
	if plan.Refresh != nil {
		if err := plan.Refresh(ctx, plan); err != nil {
			return nil, err
		}
		est.RefundLamports = plan.Refund
	}

	tx, err := sdktypes.NewTransaction(sdktypes.NewTransactionParam{
		Message: c.message(blockhash, plan.Instructions),
		Signers: []sdktypes.Account{c.signer},
	})
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := c.ledger.SendAndConfirmTransaction(ctx, tx)
	if err != nil {
		logger.Warnf("[Composer] %s %s 提交失败: %v", plan.Operation, est.Target, err)
		return nil, txerror.Translate(plan.Path, err)
	}
	logger.Infof("[Composer] %s %s 已确认: %s", plan.Operation, est.Target, sig)
	est.Blockhash = blockhash
	return &Result{Signature: sig, Estimate: est}, nil
}
