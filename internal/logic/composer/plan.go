package composer

import (
	"context"
	"fmt"

	"rhizo-cli/internal/logic/core"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/logic/instruction"
	"rhizo-cli/internal/logic/pda"
	"rhizo-cli/internal/logic/txerror"
	"rhizo-cli/internal/pkg/logger"
	"rhizo-cli/internal/types"
)

// Operation 组合操作名，用于确认提示与日志
type Operation string

const (
	OpDeployRoute Operation = "deploy route"
	OpYankRoute   Operation = "yank route"
	OpAllocSocb   Operation = "alloc socb"
	OpWriteSocb   Operation = "write socb"
)

// Plan 一笔原子交易的全部内容。
// Instructions 的顺序即提交顺序：索引变更与资源变更总在同一笔交易内。
type Plan struct {
	Operation    Operation
	Target       pda.Address
	Index        pda.Address
	Instructions []domain.Instruction
	RentDataLen  uint64 // >0 时估算新账户的租金豁免额
	Refund       uint64 // 删除时退还的 lamports
	Path         txerror.Path

	// Refresh 签名前重新读取易变的链上状态并重建指令，可为空
	Refresh func(ctx context.Context, p *Plan) error
}

// Planner 把 deploy / yank / socb 操作拆解为固定顺序的指令组合
type Planner struct {
	deriver *pda.Deriver
	builder *instruction.Builder
	ledger  core.Ledger
	owner   types.Pubkey
}

func NewPlanner(deriver *pda.Deriver, ledger core.Ledger, owner types.Pubkey) *Planner {
	return &Planner{
		deriver: deriver,
		builder: instruction.NewBuilder(deriver.ProgramID()),
		ledger:  ledger,
		owner:   owner,
	}
}

func (p *Planner) Owner() types.Pubkey {
	return p.owner
}

// DeployRoute [1 注册索引, 0 写路由]
func (p *Planner) DeployRoute(r domain.Route) (*Plan, error) {
	route, index, err := p.deriver.ResourceWithIndex(domain.RouteSeed(r.ShortName()), p.owner)
	if err != nil {
		return nil, err
	}
	register, err := p.builder.UpdateRouteIndex(p.owner, index, route.Seed, instruction.IndexRegister)
	if err != nil {
		return nil, err
	}
	write, err := p.builder.WriteRoute(p.owner, route, index, r)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Operation:    OpDeployRoute,
		Target:       route,
		Index:        index,
		Instructions: []domain.Instruction{register, write},
		RentDataLen:  uint64(len(write.Data)),
		Path:         txerror.PathRoute,
	}, nil
}

// YankRoute [1 移出索引, 4 删除账户]，退款额取当前账户余额
func (p *Planner) YankRoute(ctx context.Context, name string) (*Plan, error) {
	route, index, err := p.deriver.ResourceWithIndex(domain.RouteSeed(name), p.owner)
	if err != nil {
		return nil, err
	}
	balance, err := p.ledger.GetBalance(ctx, route.Pubkey)
	if err != nil {
		return nil, fmt.Errorf("get balance of %s: %w", route, err)
	}
	if balance == 0 {
		return nil, fmt.Errorf("route %q: %w", name, core.ErrAccountNotFound)
	}
	remove, err := p.builder.UpdateRouteIndex(p.owner, index, route.Seed, instruction.IndexRemove)
	if err != nil {
		return nil, err
	}
	del, err := p.builder.DeleteAccount(p.owner, route, balance)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Operation:    OpYankRoute,
		Target:       route,
		Index:        index,
		Instructions: []domain.Instruction{remove, del},
		Refund:       balance,
		Path:         txerror.PathRoute,
		Refresh:      p.refreshRefund,
	}, nil
}

// refreshRefund 确认提示可能持续很久，签名前重读余额，变化时重建删除指令
func (p *Planner) refreshRefund(ctx context.Context, plan *Plan) error {
	balance, err := p.ledger.GetBalance(ctx, plan.Target.Pubkey)
	if err != nil {
		return fmt.Errorf("refresh balance of %s: %w", plan.Target, err)
	}
	if balance == plan.Refund {
		return nil
	}
	logger.Warnf("[Planner] 账户 %s 余额在确认期间变化: %d -> %d，按最新值退款", plan.Target, plan.Refund, balance)
	del, err := p.builder.DeleteAccount(p.owner, plan.Target, balance)
	if err != nil {
		return err
	}
	plan.Instructions[len(plan.Instructions)-1] = del
	plan.Refund = balance
	return nil
}

// AllocSocb [5 登记索引, 2 分配]，内容为 size 个 0 字节
func (p *Planner) AllocSocb(key string, size int) (*Plan, error) {
	if size < 0 {
		return nil, fmt.Errorf("socb size must not be negative, got %d", size)
	}
	socb, index, err := p.deriver.ResourceWithIndex(domain.SocbSeed(key), p.owner)
	if err != nil {
		return nil, err
	}
	list, err := p.builder.ListSocb(p.owner, index, socb.Seed)
	if err != nil {
		return nil, err
	}
	bytes := domain.SignedOnchainBytes{OwnerPubkey: p.owner, Inner: make([]byte, size)}
	alloc, err := p.builder.AllocSocb(p.owner, socb, index, bytes)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Operation:    OpAllocSocb,
		Target:       socb,
		Index:        index,
		Instructions: []domain.Instruction{list, alloc},
		RentDataLen:  uint64(len(alloc.Data)),
		Path:         txerror.PathAllocBytes,
	}, nil
}

// WriteSocb [3 写入]，账户已存在，不再收租
func (p *Planner) WriteSocb(key string, content []byte) (*Plan, error) {
	socb, index, err := p.deriver.ResourceWithIndex(domain.SocbSeed(key), p.owner)
	if err != nil {
		return nil, err
	}
	bytes := domain.SignedOnchainBytes{OwnerPubkey: p.owner, Inner: content}
	write, err := p.builder.WriteSocb(p.owner, socb, index, bytes)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Operation:    OpWriteSocb,
		Target:       socb,
		Index:        index,
		Instructions: []domain.Instruction{write},
		Path:         txerror.PathUpdateBytes,
	}, nil
}
