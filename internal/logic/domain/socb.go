package domain

import (
	"github.com/near/borsh-go"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/types"
)

// SignedOnchainBytes owner 签名保护的链上字节块。
// BumpSeed 不落链，读取时由地址推导回填。
type SignedOnchainBytes struct {
	OwnerPubkey types.Pubkey
	Inner       []byte
	BumpSeed    *uint8 `borsh_skip:"true"`
}

// SignedOnchainBytesUpdate alloc / write 指令携带的更新请求
type SignedOnchainBytesUpdate struct {
	Seed     string // 带前缀的种子，如 "socb-config"
	Bytes    SignedOnchainBytes
	BumpSeed *uint8
}

func SocbSeed(key string) string {
	return consts.SocbSeedPrefix + key
}

func (s SignedOnchainBytes) Marshal() ([]byte, error) {
	return borsh.Serialize(s)
}

func UnmarshalSignedOnchainBytes(data []byte) (*SignedOnchainBytes, error) {
	var s SignedOnchainBytes
	if err := decodeBorsh(&s, data); err != nil {
		return nil, err
	}
	return &s, nil
}
