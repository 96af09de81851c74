package domain

import (
	"encoding/binary"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"rhizo-cli/internal/types"
)

type AccountMeta struct {
	Pubkey     types.Pubkey
	IsSigner   bool
	IsWritable bool
}

// Instruction 表示发往程序的一条指令，仅在组装交易时存在，不落盘。
type Instruction struct {
	ProgramID types.Pubkey  // 目标程序
	Accounts  []AccountMeta // 账户列表，顺序即链上程序读取顺序
	Data      []byte        // 8 字节小端 opcode + payload
}

// Opcode 读取数据前 8 字节的 opcode
func (ix Instruction) Opcode() (uint64, bool) {
	if len(ix.Data) < 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(ix.Data[:8]), true
}

func (ix Instruction) ToSdk() sdktypes.Instruction {
	metas := make([]sdktypes.AccountMeta, 0, len(ix.Accounts))
	for _, a := range ix.Accounts {
		metas = append(metas, sdktypes.AccountMeta{
			PubKey:     a.Pubkey.ToSdk(),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		})
	}
	return sdktypes.Instruction{
		ProgramID: ix.ProgramID.ToSdk(),
		Accounts:  metas,
		Data:      ix.Data,
	}
}

func InstructionsToSdk(ixs []Instruction) []sdktypes.Instruction {
	out := make([]sdktypes.Instruction, 0, len(ixs))
	for _, ix := range ixs {
		out = append(out, ix.ToSdk())
	}
	return out
}
