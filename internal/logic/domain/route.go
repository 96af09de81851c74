package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/near/borsh-go"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/types"
)

// Encoding 路由支持的响应编码
type Encoding borsh.Enum

const (
	EncodingTextHtml Encoding = iota
	EncodingTextPlain
	EncodingOctetStream
	EncodingJson
)

var encodingNames = [...]string{"TextHtml", "TextPlain", "ApplicationOctetStream", "ApplicationJson"}

func (e Encoding) String() string {
	if int(e) < len(encodingNames) {
		return encodingNames[e]
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

// ParseEncoding 大小写不敏感匹配编码名，未识别时返回 false
func ParseEncoding(s string) (Encoding, bool) {
	for i, n := range encodingNames {
		if strings.EqualFold(n, s) {
			return Encoding(i), true
		}
	}
	return 0, false
}

// NormalizeEncodings 去重并按 tag 升序，集合语义下的稳定字节序
func NormalizeEncodings(in []Encoding) []Encoding {
	seen := make(map[Encoding]struct{}, len(in))
	out := make([]Encoding, 0, len(in))
	for _, e := range in {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Argument 路由参数（名称按原始字节存储）
type Argument struct {
	Name []byte
	Type ArgumentType
}

type CacheConfig struct {
	Cacheable bool
	TTLMs     *uint64
}

// Route 链上路由账户。
// 字段顺序即 borsh 布局，修改顺序属于协议变更。
type Route struct {
	Name        string // 带前缀的种子，如 "route-hello"
	ModuleCID   types.ContentHash
	Encodings   []Encoding
	Arguments   []Argument
	BumpSeed    *uint8
	CacheConfig CacheConfig
}

// RouteSeed 由路由名构造 PDA 种子
func RouteSeed(name string) string {
	return consts.RouteSeedPrefix + name
}

// ShortName 去掉种子前缀后的路由名
func (r *Route) ShortName() string {
	return strings.TrimPrefix(r.Name, consts.RouteSeedPrefix)
}

func (r *Route) HasEncoding(e Encoding) bool {
	for _, x := range r.Encodings {
		if x == e {
			return true
		}
	}
	return false
}

func (r Route) Marshal() ([]byte, error) {
	return borsh.Serialize(r)
}

func UnmarshalRoute(data []byte) (*Route, error) {
	var r Route
	if err := decodeBorsh(&r, data); err != nil {
		return nil, err
	}
	for i, e := range r.Encodings {
		if int(e) >= len(encodingNames) {
			return nil, fmt.Errorf("encodings[%d]: unknown encoding tag %d", i, uint8(e))
		}
	}
	for i, a := range r.Arguments {
		if err := a.Type.validate(); err != nil {
			return nil, fmt.Errorf("arguments[%d]: %w", i, err)
		}
	}
	return &r, nil
}

// RouteDeploy 上传到 ingest 服务的数据包：路由元数据 + WASM 源码
type RouteDeploy struct {
	Metadata Route
	Source   []byte
}

func (d RouteDeploy) Marshal() ([]byte, error) {
	return borsh.Serialize(d)
}
