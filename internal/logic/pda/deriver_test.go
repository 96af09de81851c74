package pda

import (
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/types"
)

var (
	testOwner   = types.PubkeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	otherOwner  = types.PubkeyFromBase58("So11111111111111111111111111111111111111112")
	testProgram = consts.RhizoProgram
)

func TestDerive_Deterministic(t *testing.T) {
	d := NewDeriver(testProgram)
	a, err := d.Route("hello", testOwner)
	require.NoError(t, err)
	b, err := d.Route("hello", testOwner)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "route-hello", a.Seed)
	require.NoError(t, d.Verify(a, testOwner))
}

func TestDerive_InputsChangeResult(t *testing.T) {
	d := NewDeriver(testProgram)
	base, err := d.Route("hello", testOwner)
	require.NoError(t, err)

	otherSeed, err := d.Route("hello2", testOwner)
	require.NoError(t, err)
	assert.NotEqual(t, base.Pubkey, otherSeed.Pubkey)

	otherOwnerAddr, err := d.Route("hello", otherOwner)
	require.NoError(t, err)
	assert.NotEqual(t, base.Pubkey, otherOwnerAddr.Pubkey)

	otherProgram, err := NewDeriver(types.PubkeyFromBase58(consts.SystemProgramStr)).Route("hello", testOwner)
	require.NoError(t, err)
	assert.NotEqual(t, base.Pubkey, otherProgram.Pubkey)

	socb, err := d.Socb("hello", testOwner)
	require.NoError(t, err)
	assert.NotEqual(t, base.Pubkey, socb.Pubkey, "route-/socb- 前缀必须区分地址")
}

func TestDerive_MatchesSdk(t *testing.T) {
	d := NewDeriver(testProgram)
	idx, err := d.RouteIndex(testOwner)
	require.NoError(t, err)

	pk, bump, err := common.FindProgramAddress([][]byte{[]byte(consts.DevRoutesSeed), testOwner[:]}, testProgram.ToSdk())
	require.NoError(t, err)
	assert.Equal(t, types.PubkeyFromSdk(pk), idx.Pubkey)
	assert.Equal(t, bump, idx.Bump)
	assert.False(t, common.IsOnCurve(idx.Pubkey.ToSdk()), "PDA 不能有对应私钥")
}

func TestDerive_SeedTooLong(t *testing.T) {
	d := NewDeriver(testProgram)
	_, err := d.Route(strings.Repeat("x", 27), testOwner)
	assert.ErrorIs(t, err, ErrSeedTooLong)

	_, err = d.Route(strings.Repeat("x", 26), testOwner)
	assert.NoError(t, err, "route- + 26 字节恰好 32 字节")
}

func TestResourceWithIndex(t *testing.T) {
	d := NewDeriver(testProgram)
	res, idx, err := d.ResourceWithIndex("socb-cfg", testOwner)
	require.NoError(t, err)
	wantIdx, err := d.SocbIndex(testOwner)
	require.NoError(t, err)
	assert.Equal(t, wantIdx, idx)
	assert.Equal(t, "socb-cfg", res.Seed)

	_, _, err = d.ResourceWithIndex("other-x", testOwner)
	assert.Error(t, err)
}
