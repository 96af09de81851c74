package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/zeromicro/go-zero/core/jsonx"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/logic/core"
	"rhizo-cli/internal/pkg/logger"
	"rhizo-cli/internal/types"
)

// RpcLedgerOption JSON-RPC 账本客户端参数
type RpcLedgerOption struct {
	Endpoint       string
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// RpcLedgerService 基于 Solana JSON-RPC 实现 core.Ledger，不做任何重试
type RpcLedgerService struct {
	client         *client.Client
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

var _ core.Ledger = (*RpcLedgerService)(nil)

func NewRpcLedgerService(opt RpcLedgerOption) (*RpcLedgerService, error) {
	if opt.Endpoint == "" {
		return nil, errors.New("rpc endpoint is empty")
	}
	s := &RpcLedgerService{
		client:         client.NewClient(opt.Endpoint),
		confirmTimeout: opt.ConfirmTimeout,
		pollInterval:   opt.PollInterval,
	}
	if s.client == nil {
		return nil, errors.New("rpc client init failed")
	}
	if s.confirmTimeout <= 0 {
		s.confirmTimeout = consts.DefaultConfirmTimeout
	}
	if s.pollInterval <= 0 {
		s.pollInterval = consts.DefaultConfirmPollInterval
	}
	return s, nil
}

func (s *RpcLedgerService) GetLatestBlockhash(ctx context.Context) (string, error) {
	res, err := s.client.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("GetLatestBlockhash failed: %w", err)
	}
	return res.Blockhash, nil
}

func (s *RpcLedgerService) GetAccountData(ctx context.Context, addr types.Pubkey) ([]byte, error) {
	start := time.Now()
	info, err := s.client.GetAccountInfo(ctx, addr.String())
	if err != nil {
		return nil, fmt.Errorf("GetAccountInfo failed: %w", err)
	}
	logger.Debugf("[RpcLedgerService] GetAccountInfo %s 耗时: %v, 数据长度: %d", addr, time.Since(start), len(info.Data))

	// 账户不存在时 RPC 返回 null，SDK 给出零值
	if info.Lamports == 0 && info.Owner == (common.PublicKey{}) {
		return nil, fmt.Errorf("%w: %s", core.ErrAccountNotFound, addr)
	}
	return info.Data, nil
}

func (s *RpcLedgerService) GetBalance(ctx context.Context, addr types.Pubkey) (uint64, error) {
	balance, err := s.client.GetBalance(ctx, addr.String())
	if err != nil {
		return 0, fmt.Errorf("GetBalance failed: %w", err)
	}
	return balance, nil
}

func (s *RpcLedgerService) GetFeeForMessage(ctx context.Context, msg sdktypes.Message) (uint64, error) {
	fee, err := s.client.GetFeeForMessage(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("GetFeeForMessage failed: %w", err)
	}
	if fee == nil {
		return 0, errors.New("GetFeeForMessage: blockhash expired before fee lookup")
	}
	return *fee, nil
}

func (s *RpcLedgerService) GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error) {
	rent, err := s.client.GetMinimumBalanceForRentExemption(ctx, dataLen)
	if err != nil {
		return 0, fmt.Errorf("GetMinimumBalanceForRentExemption failed: %w", err)
	}
	return rent, nil
}

// SendAndConfirmTransaction 提交后轮询签名状态直到 confirmed / finalized 或超时。
// 预检失败与链上执行失败都转为 *core.TxFailure。
func (s *RpcLedgerService) SendAndConfirmTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error) {
	sig, err := s.client.SendTransaction(ctx, tx)
	if err != nil {
		var rpcErr *rpc.JsonRpcError
		if errors.As(err, &rpcErr) {
			if failure := failureFromRpcError(rpcErr); failure != nil {
				return "", failure
			}
		}
		return "", fmt.Errorf("SendTransaction failed: %w", err)
	}
	logger.Infof("[RpcLedgerService] 交易已提交: %s", sig)

	ctx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		status, err := s.client.GetSignatureStatus(ctx, sig)
		if err != nil {
			logger.Warnf("[RpcLedgerService] GetSignatureStatus 失败: sig=%s err=%v", sig, err)
		} else if status != nil {
			if status.Err != nil {
				return "", ParseTxError(status.Err, "")
			}
			if isConfirmed(status) {
				return sig, nil
			}
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("transaction %s not confirmed: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

func isConfirmed(status *rpc.SignatureStatus) bool {
	if status.ConfirmationStatus == nil {
		return false
	}
	switch *status.ConfirmationStatus {
	case rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return true
	default:
		return false
	}
}

// failureFromRpcError 预检失败时 error.data.err 携带 TransactionError
func failureFromRpcError(e *rpc.JsonRpcError) *core.TxFailure {
	data, ok := e.Data.(map[string]interface{})
	if !ok {
		return nil
	}
	txErr, ok := data["err"]
	if !ok || txErr == nil {
		return nil
	}
	return ParseTxError(txErr, e.Message)
}

// ParseTxError 解析 JSON 形式的 TransactionError：
//
//	{"InstructionError":[1,{"Custom":3}]}  -> index=1, code=3
//	{"InstructionError":[0,"InvalidAccountData"]}
//	"AccountNotFound"
//
// text 为空时以错误本身的 JSON 文本作为 Text。
func ParseTxError(raw interface{}, text string) *core.TxFailure {
	if text == "" {
		if b, err := jsonx.Marshal(raw); err == nil {
			text = string(b)
		} else {
			text = fmt.Sprint(raw)
		}
	}
	failure := &core.TxFailure{InstructionIndex: -1, Text: text}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return failure
	}
	pair, ok := obj["InstructionError"].([]interface{})
	if !ok || len(pair) != 2 {
		return failure
	}
	if idx, ok := toUint64(pair[0]); ok {
		failure.InstructionIndex = int(idx)
	}
	if detail, ok := pair[1].(map[string]interface{}); ok {
		if code, ok := toUint64(detail["Custom"]); ok {
			c := uint32(code)
			failure.CustomCode = &c
		}
	}
	return failure
}

func toUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int:
		return uint64(n), n >= 0
	case uint64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return uint64(i), err == nil && i >= 0
	default:
		return 0, false
	}
}
