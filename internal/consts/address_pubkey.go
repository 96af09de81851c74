package consts

import (
	"rhizo-cli/internal/types"
)

// 公钥形式的地址常量（types.Pubkey），用于交易构造与比对
var (
	SystemProgram types.Pubkey

	// 默认程序地址；实际使用的程序 id 由配置注入
	RhizoProgram types.Pubkey
)

// init 自动将 base58 字符串地址转换为 types.Pubkey
func init() {
	SystemProgram = types.PubkeyFromBase58(SystemProgramStr)
	RhizoProgram = types.PubkeyFromBase58(RhizoProgramStr)
}
