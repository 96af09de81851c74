package types

import (
	"encoding/hex"
	"fmt"
)

// ContentHash WASM 模块的内容标识（blake3 摘要），链上以原始 32 字节存储
type ContentHash [32]byte

// String 以十六进制输出，与 ingest 后端展示的 CID 一致
func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

func (h ContentHash) Bytes() []byte {
	return h[:]
}

func (h ContentHash) Equals(other ContentHash) bool {
	return h == other
}

func ContentHashFromHex(s string) (ContentHash, error) {
	var h ContentHash
	data, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("failed to decode content hash %q: %w", s, err)
	}
	if len(data) != 32 {
		return h, fmt.Errorf("invalid content hash length: got %d, want 32", len(data))
	}
	copy(h[:], data)
	return h, nil
}
