package pda

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/common"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/types"
)

var (
	// ErrSeedTooLong 种子超过链上单种子长度上限，推导前即失败
	ErrSeedTooLong = errors.New("pda: seed exceeds 32 bytes")

	// ErrBumpExhausted 所有 bump 都落在曲线上，没有可用的 PDA
	ErrBumpExhausted = errors.New("pda: no valid bump seed found")
)

// Address 推导结果：无私钥的程序地址及其 bump
type Address struct {
	Pubkey types.Pubkey
	Bump   uint8
	Seed   string
}

func (a Address) String() string {
	return a.Pubkey.String()
}

// Deriver 按 [seed, owner] 推导程序账户地址，程序 id 由外部注入
type Deriver struct {
	programID types.Pubkey
}

func NewDeriver(programID types.Pubkey) *Deriver {
	return &Deriver{programID: programID}
}

func (d *Deriver) ProgramID() types.Pubkey {
	return d.programID
}

// Derive 计算 (seed, owner, program) 对应的 PDA 与 canonical bump（从 255 向下第一个有效值）
func (d *Deriver) Derive(seed string, owner types.Pubkey) (Address, error) {
	if len(seed) > consts.MaxSeedLength {
		return Address{}, fmt.Errorf("%w: %q is %d bytes", ErrSeedTooLong, seed, len(seed))
	}
	seeds := [][]byte{[]byte(seed), owner[:]}
	pubkey, bump, err := common.FindProgramAddress(seeds, d.programID.ToSdk())
	if err != nil {
		return Address{}, fmt.Errorf("%w: seed=%q owner=%s: %v", ErrBumpExhausted, seed, owner, err)
	}
	return Address{Pubkey: types.PubkeyFromSdk(pubkey), Bump: bump, Seed: seed}, nil
}

// Verify 用给定 bump 重新计算地址，确认与推导结果一致
func (d *Deriver) Verify(addr Address, owner types.Pubkey) error {
	seeds := [][]byte{[]byte(addr.Seed), owner[:], {addr.Bump}}
	pk, err := common.CreateProgramAddress(seeds, d.programID.ToSdk())
	if err != nil {
		return fmt.Errorf("pda: create program address: %w", err)
	}
	if types.PubkeyFromSdk(pk) != addr.Pubkey {
		return fmt.Errorf("pda: address mismatch for seed %q: got %s want %s", addr.Seed, pk.ToBase58(), addr.Pubkey)
	}
	return nil
}

func (d *Deriver) Route(name string, owner types.Pubkey) (Address, error) {
	return d.Derive(domain.RouteSeed(name), owner)
}

func (d *Deriver) Socb(key string, owner types.Pubkey) (Address, error) {
	return d.Derive(domain.SocbSeed(key), owner)
}

func (d *Deriver) RouteIndex(owner types.Pubkey) (Address, error) {
	return d.Derive(consts.DevRoutesSeed, owner)
}

func (d *Deriver) SocbIndex(owner types.Pubkey) (Address, error) {
	return d.Derive(consts.DevSocbsSeed, owner)
}

// ResourceWithIndex 推导资源地址及其所属索引地址；任何触及资源的交易都要带上索引账户
func (d *Deriver) ResourceWithIndex(seed string, owner types.Pubkey) (resource Address, index Address, err error) {
	resource, err = d.Derive(seed, owner)
	if err != nil {
		return
	}
	switch {
	case strings.HasPrefix(seed, consts.RouteSeedPrefix):
		index, err = d.RouteIndex(owner)
	case strings.HasPrefix(seed, consts.SocbSeedPrefix):
		index, err = d.SocbIndex(owner)
	default:
		err = fmt.Errorf("pda: seed %q has no known resource prefix", seed)
	}
	return
}
