package domain

import (
	"errors"
	"fmt"

	"github.com/near/borsh-go"
)

var ErrEmptyData = errors.New("empty account data")

// decodeBorsh 反序列化并兜底 borsh.Deserialize 的 panic（截断或畸形数据）。
// 账户可能预分配了更大的空间，尾部多余字节不视为错误。
func decodeBorsh(v interface{}, data []byte) (err error) {
	if len(data) == 0 {
		return ErrEmptyData
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("borsh decode panic: %v", r)
		}
	}()
	return borsh.Deserialize(v, data)
}
