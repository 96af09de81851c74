package core

import (
	"context"
	"errors"
	"fmt"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"rhizo-cli/internal/types"
)

// ErrAccountNotFound 地址上没有账户（从未创建或已被删除）
var ErrAccountNotFound = errors.New("account not found")

// Ledger 客户端与账本 RPC 之间的调用约定。
// 所有方法都是一次网络往返，不做自动重试。
type Ledger interface {
	GetLatestBlockhash(ctx context.Context) (string, error)
	GetAccountData(ctx context.Context, addr types.Pubkey) ([]byte, error)
	GetBalance(ctx context.Context, addr types.Pubkey) (uint64, error)
	GetFeeForMessage(ctx context.Context, msg sdktypes.Message) (uint64, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	// SendAndConfirmTransaction 提交并等待确认；链上执行失败时返回 *TxFailure
	SendAndConfirmTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error)
}

// TxFailure 链上执行失败的结构化描述
type TxFailure struct {
	InstructionIndex int     // 失败指令的下标，非指令错误时为 -1
	CustomCode       *uint32 // InstructionError::Custom 的错误码
	Text             string  // 账本返回的原始错误文本
}

func (f *TxFailure) Error() string {
	if f.CustomCode != nil {
		return fmt.Sprintf("instruction %d failed with custom error %d", f.InstructionIndex, *f.CustomCode)
	}
	return f.Text
}

func (f *TxFailure) IsCustom() bool {
	return f.CustomCode != nil
}
