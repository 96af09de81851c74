package instruction

import (
	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/logic/pda"
	"rhizo-cli/internal/types"
)

// Builder 组装各 opcode 的完整指令（程序 id + 账户列表 + 数据）。
// 账户顺序与读写标记是与链上程序的约定，不可随意调整。
type Builder struct {
	programID types.Pubkey
}

func NewBuilder(programID types.Pubkey) *Builder {
	return &Builder{programID: programID}
}

func (b *Builder) build(p Payload, accounts ...domain.AccountMeta) (domain.Instruction, error) {
	data, err := Encode(p)
	if err != nil {
		return domain.Instruction{}, err
	}
	return domain.Instruction{ProgramID: b.programID, Accounts: accounts, Data: data}, nil
}

func signer(owner types.Pubkey) domain.AccountMeta {
	return domain.AccountMeta{Pubkey: owner, IsSigner: true, IsWritable: true}
}

func writable(addr pda.Address) domain.AccountMeta {
	return domain.AccountMeta{Pubkey: addr.Pubkey, IsWritable: true}
}

func readonly(addr pda.Address) domain.AccountMeta {
	return domain.AccountMeta{Pubkey: addr.Pubkey}
}

func systemProgram() domain.AccountMeta {
	return domain.AccountMeta{Pubkey: consts.SystemProgram}
}

// WriteRoute 账户: [owner(s,w), route(w), system, _dev_routes(r)]
func (b *Builder) WriteRoute(owner types.Pubkey, route, index pda.Address, r domain.Route) (domain.Instruction, error) {
	bump := route.Bump
	r.Name = route.Seed
	r.BumpSeed = &bump
	r.Encodings = domain.NormalizeEncodings(r.Encodings)
	return b.build(WriteRoute{Route: r}, signer(owner), writable(route), systemProgram(), readonly(index))
}

// UpdateRouteIndex 账户: [owner(s,w), _dev_routes(w), system]
func (b *Builder) UpdateRouteIndex(owner types.Pubkey, index pda.Address, routeSeed string, op IndexOperation) (domain.Instruction, error) {
	bump := index.Bump
	return b.build(RouteIndexUpdate{Route: routeSeed, BumpSeed: &bump, Operation: op},
		signer(owner), writable(index), systemProgram())
}

// AllocSocb 账户: [owner(s,w), socb(w), system, _dev_socbs(r)]
func (b *Builder) AllocSocb(owner types.Pubkey, socb, index pda.Address, bytes domain.SignedOnchainBytes) (domain.Instruction, error) {
	bump := socb.Bump
	update := domain.SignedOnchainBytesUpdate{Seed: socb.Seed, Bytes: bytes, BumpSeed: &bump}
	return b.build(AllocSocb{Update: update}, signer(owner), writable(socb), systemProgram(), readonly(index))
}

// WriteSocb 账户同 AllocSocb
func (b *Builder) WriteSocb(owner types.Pubkey, socb, index pda.Address, bytes domain.SignedOnchainBytes) (domain.Instruction, error) {
	bump := socb.Bump
	update := domain.SignedOnchainBytesUpdate{Seed: socb.Seed, Bytes: bytes, BumpSeed: &bump}
	return b.build(WriteSocb{Update: update}, signer(owner), writable(socb), systemProgram(), readonly(index))
}

// DeleteAccount 账户: [owner(s,w), target(w)]
func (b *Builder) DeleteAccount(owner types.Pubkey, target pda.Address, refundLamports uint64) (domain.Instruction, error) {
	return b.build(DeleteAccount{RefundLamports: refundLamports}, signer(owner), writable(target))
}

// ListSocb 账户: [owner(s,w), _dev_socbs(w), system]
func (b *Builder) ListSocb(owner types.Pubkey, index pda.Address, socbSeed string) (domain.Instruction, error) {
	return b.build(ListSocb{Bump: index.Bump, Seed: socbSeed}, signer(owner), writable(index), systemProgram())
}
