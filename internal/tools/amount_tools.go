package tools

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const SolDecimals = 9

// LamportsToSol lamports 转 SOL，保留全部 9 位精度
func LamportsToSol(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -SolDecimals)
}

// FormatSol 去掉尾随 0 的 SOL 文本，如 0.00089088
func FormatSol(lamports uint64) string {
	return LamportsToSol(lamports).String()
}
