package txerror

import (
	"errors"
	"fmt"

	"rhizo-cli/internal/logic/core"
)

// Path 交易所属的操作路径，部分错误码只在特定路径上有含义
type Path int

const (
	PathRoute       Path = iota // 路由创建/删除
	PathAllocBytes              // SOCB 分配
	PathUpdateBytes             // SOCB 内容更新
)

// 与链上程序错误枚举一一对应，程序侧新增错误码时需同步
var (
	ErrResourceLimit   = errors.New("resource limit reached for this developer") // code 0
	ErrRefused         = errors.New("nice try")                                  // code 1
	ErrNotAuthorized   = errors.New("not authorized to mutate bytes")            // code 3，仅 PathUpdateBytes
	ErrUnsupportedCode = errors.New("unsupported instruction error code")
)

// ProgramError 链上程序返回自定义错误码时的翻译结果
type ProgramError struct {
	InstructionIndex int
	Code             uint32
	Err              error
}

func (e *ProgramError) Error() string {
	return e.Err.Error()
}

func (e *ProgramError) Unwrap() error {
	return e.Err
}

// LedgerError 非自定义错误码的账本失败，文本原样透出
type LedgerError struct {
	Failure *core.TxFailure
}

func (e *LedgerError) Error() string {
	return e.Failure.Text
}

func (e *LedgerError) Unwrap() error {
	return e.Failure
}

// Translate 把提交失败翻译为面向操作者的错误。
// 非 *core.TxFailure 的错误（网络、超时等）原样返回。
func Translate(path Path, err error) error {
	if err == nil {
		return nil
	}
	var failure *core.TxFailure
	if !errors.As(err, &failure) {
		return err
	}
	if !failure.IsCustom() {
		return &LedgerError{Failure: failure}
	}
	code := *failure.CustomCode
	return &ProgramError{
		InstructionIndex: failure.InstructionIndex,
		Code:             code,
		Err:              lookup(path, code),
	}
}

func lookup(path Path, code uint32) error {
	switch code {
	case 0:
		return ErrResourceLimit
	case 1:
		return ErrRefused
	case 3:
		if path == PathUpdateBytes {
			return ErrNotAuthorized
		}
	}
	return ErrUnsupportedCode
}

func (p Path) String() string {
	switch p {
	case PathRoute:
		return "route"
	case PathAllocBytes:
		return "alloc_bytes"
	case PathUpdateBytes:
		return "update_bytes"
	default:
		return fmt.Sprintf("path(%d)", int(p))
	}
}
