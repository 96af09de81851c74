package domain

import (
	"testing"

	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhizo-cli/internal/types"
)

func u64p(v uint64) *uint64 { return &v }
func u8p(v uint8) *uint8    { return &v }

func TestRouteRoundTrip(t *testing.T) {
	route := Route{
		Name:      RouteSeed("hello"),
		ModuleCID: types.ContentHash{1, 2, 3, 31: 0xff},
		Encodings: []Encoding{EncodingTextPlain, EncodingJson},
		Arguments: []Argument{
			{Name: []byte("count"), Type: Scalar(ScalarU32)},
			{Name: []byte("tags"), Type: ArrayOf(ScalarStr)},
			{Name: []byte("matrix"), Type: NestedArrayOf(ScalarF64)},
		},
		BumpSeed:    u8p(254),
		CacheConfig: CacheConfig{Cacheable: true, TTLMs: u64p(60_000)},
	}

	data, err := route.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalRoute(data)
	require.NoError(t, err)
	assert.Equal(t, route, *got)
	assert.Equal(t, "hello", got.ShortName())
}

func TestRouteRoundTrip_EmptyFields(t *testing.T) {
	route := Route{Name: "route-x"}

	data, err := route.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalRoute(data)
	require.NoError(t, err)
	assert.Equal(t, route.Name, got.Name)
	assert.Len(t, got.Encodings, 0)
	assert.Len(t, got.Arguments, 0)
	assert.Nil(t, got.BumpSeed)
	assert.False(t, got.CacheConfig.Cacheable)
	assert.Nil(t, got.CacheConfig.TTLMs)
}

func TestRouteLayout(t *testing.T) {
	route := Route{
		Name:      "route-a",
		Encodings: []Encoding{EncodingTextPlain},
		Arguments: []Argument{{Name: []byte("n"), Type: ArrayOf(ScalarU8)}},
	}
	data, err := route.Marshal()
	require.NoError(t, err)

	want := []byte{7, 0, 0, 0, 'r', 'o', 'u', 't', 'e', '-', 'a'}
	want = append(want, make([]byte, 32)...)                // module cid
	want = append(want, 1, 0, 0, 0, 1)                      // encodings = [TextPlain]
	want = append(want, 1, 0, 0, 0, 1, 0, 0, 0, 'n', 12, 0) // [("n", Array(U8))]
	want = append(want, 0)                                  // bump = None
	want = append(want, 0, 0)                               // cache = (false, None)
	assert.Equal(t, want, data)
}

func TestUnmarshalRoute_Failures(t *testing.T) {
	_, err := UnmarshalRoute(nil)
	assert.ErrorIs(t, err, ErrEmptyData)

	data, err := Route{Name: "route-truncated", Encodings: []Encoding{EncodingJson}}.Marshal()
	require.NoError(t, err)
	_, err = UnmarshalRoute(data[:20])
	assert.Error(t, err, "截断数据必须报错")

	bad, err := Route{Name: "route-bad", Encodings: []Encoding{Encoding(9)}}.Marshal()
	require.NoError(t, err)
	_, err = UnmarshalRoute(bad)
	assert.ErrorContains(t, err, "unknown encoding tag")
}

func TestNormalizeEncodings(t *testing.T) {
	got := NormalizeEncodings([]Encoding{EncodingJson, EncodingTextPlain, EncodingJson})
	assert.Equal(t, []Encoding{EncodingTextPlain, EncodingJson}, got)

	e, ok := ParseEncoding("textplain")
	assert.True(t, ok)
	assert.Equal(t, EncodingTextPlain, e)
	_, ok = ParseEncoding("text/plain")
	assert.False(t, ok)
}

func TestSignedOnchainBytesRoundTrip(t *testing.T) {
	owner := types.PubkeyFromBase58("Ep1SV45cqumZmogwWFy6pVNvMpRerMZUUhSJTbTh2e58")
	socb := SignedOnchainBytes{OwnerPubkey: owner, Inner: []byte("payload")}

	data, err := socb.Marshal()
	require.NoError(t, err)
	assert.Len(t, data, 32+4+7)

	got, err := UnmarshalSignedOnchainBytes(data)
	require.NoError(t, err)
	assert.Equal(t, owner, got.OwnerPubkey)
	assert.Equal(t, []byte("payload"), got.Inner)
	assert.Nil(t, got.BumpSeed)

	empty, err := SignedOnchainBytes{OwnerPubkey: owner}.Marshal()
	require.NoError(t, err)
	got, err = UnmarshalSignedOnchainBytes(empty)
	require.NoError(t, err)
	assert.Len(t, got.Inner, 0)
}

func TestDeveloperIndex(t *testing.T) {
	idx := DeveloperIndex{Names: []string{"route-a", "route-b"}}
	data, err := idx.Marshal()
	require.NoError(t, err)

	// 账户通常预分配了更多空间，尾部零字节应被忽略
	data = append(data, make([]byte, 64)...)

	got, err := UnmarshalDeveloperIndex(data)
	require.NoError(t, err)
	assert.True(t, got.Contains("route-b"))
	assert.False(t, got.Contains("route-c"))
}

func TestArgumentTypeBorshTags(t *testing.T) {
	data, err := borsh.Serialize(NestedArrayOf(ScalarStr))
	require.NoError(t, err)
	assert.Equal(t, []byte{12, 12, 10}, data)

	data, err = borsh.Serialize(Scalar(ScalarBool))
	require.NoError(t, err)
	assert.Equal(t, []byte{11}, data)
}
