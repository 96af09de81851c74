package instruction

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/near/borsh-go"

	"rhizo-cli/internal/logic/domain"
)

// Payload 各 opcode 的参数结构，集合封闭（只有本包内的类型实现）。
// 每个变体各自负责 opcode 之后的字节布局。
type Payload interface {
	Opcode() Opcode
	encodeBody() ([]byte, error)
}

// IndexOperation 索引更新的动作
type IndexOperation borsh.Enum

const (
	IndexRegister IndexOperation = 0
	IndexRemove   IndexOperation = 1
)

// WriteRoute opcode 0：完整的路由账户数据
type WriteRoute struct {
	Route domain.Route
}

func (WriteRoute) Opcode() Opcode { return OpWriteRoute }

func (p WriteRoute) encodeBody() ([]byte, error) {
	return borsh.Serialize(p.Route)
}

// RouteIndexUpdate opcode 1：{route, bump(索引), operation}
type RouteIndexUpdate struct {
	Route     string
	BumpSeed  *uint8
	Operation IndexOperation
}

func (RouteIndexUpdate) Opcode() Opcode { return OpRouteIndexUpdate }

func (p RouteIndexUpdate) encodeBody() ([]byte, error) {
	return borsh.Serialize(p)
}

// AllocSocb opcode 2：{seed, bytes, bump(资源)}
type AllocSocb struct {
	Update domain.SignedOnchainBytesUpdate
}

func (AllocSocb) Opcode() Opcode { return OpAllocSocb }

func (p AllocSocb) encodeBody() ([]byte, error) {
	return borsh.Serialize(p.Update)
}

// WriteSocb opcode 3：布局同 AllocSocb
type WriteSocb struct {
	Update domain.SignedOnchainBytesUpdate
}

func (WriteSocb) Opcode() Opcode { return OpWriteSocb }

func (p WriteSocb) encodeBody() ([]byte, error) {
	return borsh.Serialize(p.Update)
}

// DeleteAccount opcode 4：退还给 owner 的 lamports（u64 小端）
type DeleteAccount struct {
	RefundLamports uint64
}

func (DeleteAccount) Opcode() Opcode { return OpDeleteAccount }

func (p DeleteAccount) encodeBody() ([]byte, error) {
	return binary.LittleEndian.AppendUint64(nil, p.RefundLamports), nil
}

// ListSocb opcode 5：bump(索引) 单字节 + borsh{seed}
type ListSocb struct {
	Bump uint8
	Seed string
}

type listSocbBody struct {
	Seed string
}

func (ListSocb) Opcode() Opcode { return OpListSocb }

func (p ListSocb) encodeBody() ([]byte, error) {
	body, err := borsh.Serialize(listSocbBody{Seed: p.Seed})
	if err != nil {
		return nil, err
	}
	return append([]byte{p.Bump}, body...), nil
}

var (
	ErrShortData     = errors.New("instruction data shorter than opcode tag")
	ErrUnknownOpcode = errors.New("unknown opcode")
)

func decodeBody(op Opcode, body []byte) (Payload, error) {
	switch op {
	case OpWriteRoute:
		var p WriteRoute
		err := safeDeserialize(&p.Route, body)
		return p, err
	case OpRouteIndexUpdate:
		var p RouteIndexUpdate
		err := safeDeserialize(&p, body)
		return p, err
	case OpAllocSocb:
		var p AllocSocb
		err := safeDeserialize(&p.Update, body)
		return p, err
	case OpWriteSocb:
		var p WriteSocb
		err := safeDeserialize(&p.Update, body)
		return p, err
	case OpDeleteAccount:
		if len(body) != 8 {
			return nil, fmt.Errorf("delete_account: body is %d bytes, want 8", len(body))
		}
		return DeleteAccount{RefundLamports: binary.LittleEndian.Uint64(body)}, nil
	case OpListSocb:
		if len(body) < 1 {
			return nil, errors.New("list_socb: missing bump byte")
		}
		var b listSocbBody
		if err := safeDeserialize(&b, body[1:]); err != nil {
			return nil, err
		}
		return ListSocb{Bump: body[0], Seed: b.Seed}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOpcode, uint64(op))
	}
}

func safeDeserialize(v interface{}, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("borsh decode panic: %v", r)
		}
	}()
	return borsh.Deserialize(v, data)
}
