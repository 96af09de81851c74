package instruction

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/types"
)

func u8p(v uint8) *uint8 { return &v }

func TestEncode_OpcodePrefix(t *testing.T) {
	owner := types.PubkeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	cases := []struct {
		payload Payload
		opcode  uint64
	}{
		{WriteRoute{Route: domain.Route{Name: "route-a"}}, 0},
		{RouteIndexUpdate{Route: "route-a", BumpSeed: u8p(255)}, 1},
		{AllocSocb{Update: domain.SignedOnchainBytesUpdate{Seed: "socb-a", Bytes: domain.SignedOnchainBytes{OwnerPubkey: owner}}}, 2},
		{WriteSocb{Update: domain.SignedOnchainBytesUpdate{Seed: "socb-a", Bytes: domain.SignedOnchainBytes{OwnerPubkey: owner}}}, 3},
		{DeleteAccount{RefundLamports: 42}, 4},
		{ListSocb{Bump: 7, Seed: "socb-a"}, 5},
	}
	for _, c := range cases {
		data, err := Encode(c.payload)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(data), 8)
		assert.Equal(t, c.opcode, binary.LittleEndian.Uint64(data[:8]), c.payload.Opcode().String())
	}
}

func TestEncode_FixedLayouts(t *testing.T) {
	data, err := Encode(DeleteAccount{RefundLamports: 0x0102030405060708})
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 0, 0, 0, 0, 0, 0, 0, 8, 7, 6, 5, 4, 3, 2, 1}, data)

	data, err = Encode(ListSocb{Bump: 0xfd, Seed: "socb-k"})
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 0, 0, 0, 0, 0, 0, 0, 0xfd, 6, 0, 0, 0, 's', 'o', 'c', 'b', '-', 'k'}, data)

	data, err = Encode(RouteIndexUpdate{Route: "route-a", BumpSeed: u8p(0xfe), Operation: IndexRemove})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 7, 0, 0, 0, 'r', 'o', 'u', 't', 'e', '-', 'a', 1, 0xfe, 1}, data)
}

func TestDecode_Inverse(t *testing.T) {
	owner := types.PubkeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	payloads := []Payload{
		WriteRoute{Route: domain.Route{
			Name:      "route-hello",
			Encodings: []domain.Encoding{domain.EncodingTextPlain},
			Arguments: []domain.Argument{{Name: []byte("a"), Type: domain.ArrayOf(domain.ScalarI64)}},
			BumpSeed:  u8p(250),
		}},
		RouteIndexUpdate{Route: "route-hello", BumpSeed: u8p(251), Operation: IndexRegister},
		AllocSocb{Update: domain.SignedOnchainBytesUpdate{
			Seed:     "socb-k",
			Bytes:    domain.SignedOnchainBytes{OwnerPubkey: owner, Inner: make([]byte, 32)},
			BumpSeed: u8p(249),
		}},
		WriteSocb{Update: domain.SignedOnchainBytesUpdate{
			Seed:     "socb-k",
			Bytes:    domain.SignedOnchainBytes{OwnerPubkey: owner, Inner: []byte("new")},
			BumpSeed: u8p(249),
		}},
		DeleteAccount{RefundLamports: 1_000_000},
		ListSocb{Bump: 3, Seed: "socb-k"},
	}
	for _, p := range payloads {
		data, err := Encode(p)
		require.NoError(t, err)
		got, err := Decode(data)
		require.NoError(t, err, p.Opcode().String())
		assert.Equal(t, p, got)
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrShortData)

	_, err = Decode([]byte{9, 0, 0, 0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrUnknownOpcode)

	_, err = Decode([]byte{4, 0, 0, 0, 0, 0, 0, 0, 1})
	assert.Error(t, err)

	_, err = Decode([]byte{5, 0, 0, 0, 0, 0, 0, 0})
	assert.Error(t, err)
}
