package instruction

import (
	"encoding/binary"
	"fmt"
)

const opcodeSize = 8

// Encode 将指令参数编码为链上程序的数据格式：
// - 前 8 字节为 opcode（uint64，小端序）
// - 后续为各变体自身的 payload
// 编码器不做业务校验，只序列化已校验过的值。
func Encode(p Payload) ([]byte, error) {
	body, err := p.encodeBody()
	if err != nil {
		return nil, fmt.Errorf("Encode: %s: %w", p.Opcode(), err)
	}
	buf := make([]byte, opcodeSize, opcodeSize+len(body))
	binary.LittleEndian.PutUint64(buf, uint64(p.Opcode()))
	return append(buf, body...), nil
}

// Decode Encode 的逆过程，用于审计已编码的指令与测试替身
func Decode(data []byte) (Payload, error) {
	if len(data) < opcodeSize {
		return nil, ErrShortData
	}
	op := Opcode(binary.LittleEndian.Uint64(data[:opcodeSize]))
	p, err := decodeBody(op, data[opcodeSize:])
	if err != nil {
		return nil, fmt.Errorf("Decode: %s: %w", op, err)
	}
	return p, nil
}
