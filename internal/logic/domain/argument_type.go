package domain

import (
	"fmt"
	"strings"

	"github.com/near/borsh-go"
)

// ScalarKind 标量参数类型，取值同时是各层枚举中标量变体的 borsh tag
type ScalarKind uint8

const (
	ScalarU8 ScalarKind = iota
	ScalarU16
	ScalarU32
	ScalarU64
	ScalarI8
	ScalarI16
	ScalarI32
	ScalarI64
	ScalarF32
	ScalarF64
	ScalarStr
	ScalarBool
)

// arrayTag ArgumentType / CollectionType 中 Array 变体的 tag
const arrayTag borsh.Enum = 12

var scalarNames = [...]string{"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64", "f32", "f64", "str", "bool"}

func (k ScalarKind) String() string {
	if int(k) < len(scalarNames) {
		return scalarNames[k]
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

func (k ScalarKind) valid() bool {
	return int(k) < len(scalarNames)
}

// ArgumentType 路由参数的调用约定：标量、一维数组或二维数组。
// 结构体布局即链上 borsh 枚举布局（Enum 为 tag，其后字段按 tag 顺序排列）。
type ArgumentType struct {
	Enum  borsh.Enum `borsh_enum:"true"`
	U8    struct{}
	U16   struct{}
	U32   struct{}
	U64   struct{}
	I8    struct{}
	I16   struct{}
	I32   struct{}
	I64   struct{}
	F32   struct{}
	F64   struct{}
	Str   struct{}
	Bool  struct{}
	Array CollectionType
}

// CollectionType 一维数组的元素类型
type CollectionType struct {
	Enum  borsh.Enum `borsh_enum:"true"`
	U8    struct{}
	U16   struct{}
	U32   struct{}
	U64   struct{}
	I8    struct{}
	I16   struct{}
	I32   struct{}
	I64   struct{}
	F32   struct{}
	F64   struct{}
	Str   struct{}
	Bool  struct{}
	Array NestedCollectionType
}

// NestedCollectionType 二维数组的元素类型（只允许标量）
type NestedCollectionType struct {
	Enum borsh.Enum `borsh_enum:"true"`
	U8   struct{}
	U16  struct{}
	U32  struct{}
	U64  struct{}
	I8   struct{}
	I16  struct{}
	I32  struct{}
	I64  struct{}
	F32  struct{}
	F64  struct{}
	Str  struct{}
	Bool struct{}
}

func Scalar(k ScalarKind) ArgumentType {
	return ArgumentType{Enum: borsh.Enum(k)}
}

func ArrayOf(k ScalarKind) ArgumentType {
	return ArgumentType{Enum: arrayTag, Array: CollectionType{Enum: borsh.Enum(k)}}
}

func NestedArrayOf(k ScalarKind) ArgumentType {
	return ArgumentType{
		Enum:  arrayTag,
		Array: CollectionType{Enum: arrayTag, Array: NestedCollectionType{Enum: borsh.Enum(k)}},
	}
}

// Depth 数组嵌套层数：0 标量，1 一维，2 二维
func (a ArgumentType) Depth() int {
	switch {
	case a.Enum != arrayTag:
		return 0
	case a.Array.Enum != arrayTag:
		return 1
	default:
		return 2
	}
}

// Elem 最内层的标量类型
func (a ArgumentType) Elem() ScalarKind {
	switch a.Depth() {
	case 0:
		return ScalarKind(a.Enum)
	case 1:
		return ScalarKind(a.Array.Enum)
	default:
		return ScalarKind(a.Array.Array.Enum)
	}
}

func (a ArgumentType) String() string {
	s := a.Elem().String()
	for i := 0; i < a.Depth(); i++ {
		s = "vec<" + s + ">"
	}
	return s
}

// ParseArgumentType 解析配置中的参数类型名（大小写不敏感），如 "u8"、"vec<str>"、"vec<vec<f64>>"
func ParseArgumentType(s string) (ArgumentType, error) {
	name := strings.ToLower(s)
	depth := 0
	for strings.HasPrefix(name, "vec<") && strings.HasSuffix(name, ">") {
		name = name[len("vec<") : len(name)-1]
		depth++
	}
	if depth > 2 {
		return ArgumentType{}, fmt.Errorf("unsupported argument type %q", s)
	}

	kind, ok := lookupScalar(name)
	if !ok {
		return ArgumentType{}, fmt.Errorf("unsupported argument type %q", s)
	}
	switch depth {
	case 0:
		return Scalar(kind), nil
	case 1:
		return ArrayOf(kind), nil
	default:
		return NestedArrayOf(kind), nil
	}
}

func lookupScalar(name string) (ScalarKind, bool) {
	for i, n := range scalarNames {
		if n == name {
			return ScalarKind(i), true
		}
	}
	return 0, false
}

// validate 检查解码得到的 tag 是否落在已知范围（borsh 解码只看 tag 不校验语义）
func (a ArgumentType) validate() error {
	var k ScalarKind
	switch a.Depth() {
	case 0:
		k = ScalarKind(a.Enum)
	case 1:
		k = ScalarKind(a.Array.Enum)
	default:
		k = ScalarKind(a.Array.Array.Enum)
	}
	if !k.valid() {
		return fmt.Errorf("unknown argument type tag %d", uint8(k))
	}
	return nil
}
