// Package fakeledger 内存账本，实现 core.Ledger 并按 opcode 表执行指令，供测试使用。
package fakeledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"

	"rhizo-cli/internal/logic/core"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/logic/instruction"
	"rhizo-cli/internal/types"
)

const (
	DefaultFee         = 5000
	rentPerByteYear    = 3480
	rentExemptionYears = 2
	accountOverhead    = 128
)

// 与链上程序错误枚举对应的自定义错误码
const (
	CodeResourceLimit uint32 = 0
	CodeRefused       uint32 = 1
	CodeNotAuthorized uint32 = 3
)

type Account struct {
	Lamports uint64
	Data     []byte
}

// Ledger 单进程内存账本。交易原子执行：任何指令失败都不改变状态。
type Ledger struct {
	mu        sync.Mutex
	programID types.Pubkey
	accounts  map[types.Pubkey]Account
	blockhash int

	// FailNext 非空时下一次提交直接返回该失败
	FailNext *core.TxFailure
	// IndexLimit 大于 0 时索引条目数达到上限后再注册返回 CodeResourceLimit
	IndexLimit int
	// OnSubmit 提交前回调，用于模拟确认期间的状态变化
	OnSubmit func(l *Ledger)

	Submitted      []sdktypes.Transaction
	BlockhashCalls int
}

func New(programID types.Pubkey) *Ledger {
	return &Ledger{programID: programID, accounts: make(map[types.Pubkey]Account)}
}

func (l *Ledger) Put(addr types.Pubkey, acc Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[addr] = acc
}

func (l *Ledger) Account(addr types.Pubkey) (Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[addr]
	return acc, ok
}

func (l *Ledger) SubmitCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Submitted)
}

func (l *Ledger) GetLatestBlockhash(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.BlockhashCalls++
	l.blockhash++
	// 每次返回不同的 blockhash，便于断言签名使用的是最新值
	seed := make([]byte, 32)
	seed[0] = byte(l.blockhash)
	seed[1] = byte(l.blockhash >> 8)
	return base58.Encode(seed), nil
}

func (l *Ledger) GetAccountData(ctx context.Context, addr types.Pubkey) ([]byte, error) {
	acc, ok := l.Account(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrAccountNotFound, addr)
	}
	return append([]byte(nil), acc.Data...), nil
}

func (l *Ledger) GetBalance(ctx context.Context, addr types.Pubkey) (uint64, error) {
	acc, _ := l.Account(addr)
	return acc.Lamports, nil
}

func (l *Ledger) GetFeeForMessage(ctx context.Context, msg sdktypes.Message) (uint64, error) {
	return DefaultFee * uint64(msg.Header.NumRequireSignatures), nil
}

func (l *Ledger) GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error) {
	return Rent(dataLen), nil
}

// Rent 与主网一致的租金豁免公式
func Rent(dataLen uint64) uint64 {
	return (accountOverhead + dataLen) * rentPerByteYear * rentExemptionYears
}

func (l *Ledger) SendAndConfirmTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error) {
	if l.OnSubmit != nil {
		l.OnSubmit(l)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.Submitted = append(l.Submitted, tx)

	if len(tx.Signatures) == 0 {
		return "", errors.New("fakeledger: transaction is not signed")
	}
	sig := base58.Encode(tx.Signatures[0])

	if f := l.FailNext; f != nil {
		l.FailNext = nil
		return "", f
	}

	// 在副本上执行，全部成功后再提交
	staged := make(map[types.Pubkey]Account, len(l.accounts))
	for k, v := range l.accounts {
		staged[k] = v
	}
	msg := tx.Message
	for i, cix := range msg.Instructions {
		programID := types.PubkeyFromSdk(msg.Accounts[cix.ProgramIDIndex])
		if programID != l.programID {
			continue
		}
		accounts := make([]types.Pubkey, 0, len(cix.Accounts))
		for _, idx := range cix.Accounts {
			accounts = append(accounts, types.PubkeyFromSdk(msg.Accounts[idx]))
		}
		if err := l.apply(staged, i, accounts, cix.Data); err != nil {
			return "", err
		}
	}
	l.accounts = staged
	return sig, nil
}

func custom(index int, code uint32) *core.TxFailure {
	return &core.TxFailure{
		InstructionIndex: index,
		CustomCode:       &code,
		Text:             fmt.Sprintf("Error processing Instruction %d: custom program error: 0x%x", index, code),
	}
}

func plain(index int, text string) *core.TxFailure {
	return &core.TxFailure{InstructionIndex: index, Text: text}
}

func (l *Ledger) apply(state map[types.Pubkey]Account, index int, accounts []types.Pubkey, data []byte) error {
	payload, err := instruction.Decode(data)
	if err != nil {
		return plain(index, "invalid instruction data: "+err.Error())
	}
	if len(accounts) < 2 {
		return plain(index, "NotEnoughAccountKeys")
	}
	owner, target := accounts[0], accounts[1]

	switch p := payload.(type) {
	case instruction.WriteRoute:
		if len(accounts) < 4 {
			return plain(index, "NotEnoughAccountKeys")
		}
		body, err := p.Route.Marshal()
		if err != nil {
			return plain(index, err.Error())
		}
		state[target] = Account{Lamports: Rent(uint64(len(body))), Data: body}

	case instruction.RouteIndexUpdate:
		return l.updateIndex(state, index, target, p.Route, p.Operation)

	case instruction.ListSocb:
		return l.updateIndex(state, index, target, p.Seed, instruction.IndexRegister)

	case instruction.AllocSocb:
		if _, exists := state[target]; exists {
			return custom(index, CodeRefused)
		}
		if p.Update.Bytes.OwnerPubkey != owner {
			return custom(index, CodeRefused)
		}
		body, err := p.Update.Bytes.Marshal()
		if err != nil {
			return plain(index, err.Error())
		}
		state[target] = Account{Lamports: Rent(uint64(len(body))), Data: body}

	case instruction.WriteSocb:
		acc, exists := state[target]
		if !exists {
			return plain(index, "AccountNotFound")
		}
		current, err := domain.UnmarshalSignedOnchainBytes(acc.Data)
		if err != nil {
			return plain(index, err.Error())
		}
		if current.OwnerPubkey != owner {
			return custom(index, CodeNotAuthorized)
		}
		if len(p.Update.Bytes.Inner) > len(current.Inner) {
			return custom(index, CodeResourceLimit)
		}
		body, err := p.Update.Bytes.Marshal()
		if err != nil {
			return plain(index, err.Error())
		}
		acc.Data = body
		state[target] = acc

	case instruction.DeleteAccount:
		acc, exists := state[target]
		if !exists {
			return plain(index, "AccountNotFound")
		}
		if p.RefundLamports != acc.Lamports {
			return custom(index, CodeRefused)
		}
		delete(state, target)
		o := state[owner]
		o.Lamports += p.RefundLamports
		state[owner] = o

	default:
		return plain(index, fmt.Sprintf("unsupported opcode %s", payload.Opcode()))
	}
	return nil
}

func (l *Ledger) updateIndex(state map[types.Pubkey]Account, index int, addr types.Pubkey, name string, op instruction.IndexOperation) error {
	idx := &domain.DeveloperIndex{}
	if acc, ok := state[addr]; ok {
		decoded, err := domain.UnmarshalDeveloperIndex(acc.Data)
		if err != nil {
			return plain(index, err.Error())
		}
		idx = decoded
	}

	switch op {
	case instruction.IndexRegister:
		if !idx.Contains(name) {
			if l.IndexLimit > 0 && len(idx.Names) >= l.IndexLimit {
				return custom(index, CodeResourceLimit)
			}
			idx.Names = append(idx.Names, name)
		}
	case instruction.IndexRemove:
		kept := idx.Names[:0]
		for _, n := range idx.Names {
			if n != name {
				kept = append(kept, n)
			}
		}
		idx.Names = kept
	default:
		return plain(index, fmt.Sprintf("unknown index operation %d", op))
	}

	body, err := idx.Marshal()
	if err != nil {
		return plain(index, err.Error())
	}
	state[addr] = Account{Lamports: Rent(uint64(len(body))), Data: body}
	return nil
}
