package instruction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/logic/pda"
	"rhizo-cli/internal/types"
)

var (
	testOwner = types.PubkeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	deriver   = pda.NewDeriver(consts.RhizoProgram)
	builder   = NewBuilder(consts.RhizoProgram)
)

func TestBuilder_WriteRouteAccounts(t *testing.T) {
	route, err := deriver.Route("hello", testOwner)
	require.NoError(t, err)
	index, err := deriver.RouteIndex(testOwner)
	require.NoError(t, err)

	ix, err := builder.WriteRoute(testOwner, route, index, domain.Route{
		Encodings: []domain.Encoding{domain.EncodingJson, domain.EncodingTextPlain, domain.EncodingJson},
	})
	require.NoError(t, err)

	assert.Equal(t, consts.RhizoProgram, ix.ProgramID)
	assert.Equal(t, []domain.AccountMeta{
		{Pubkey: testOwner, IsSigner: true, IsWritable: true},
		{Pubkey: route.Pubkey, IsWritable: true},
		{Pubkey: consts.SystemProgram},
		{Pubkey: index.Pubkey},
	}, ix.Accounts)

	p, err := Decode(ix.Data)
	require.NoError(t, err)
	written := p.(WriteRoute).Route
	assert.Equal(t, "route-hello", written.Name)
	require.NotNil(t, written.BumpSeed)
	assert.Equal(t, route.Bump, *written.BumpSeed)
	assert.Equal(t, []domain.Encoding{domain.EncodingTextPlain, domain.EncodingJson}, written.Encodings)
}

func TestBuilder_IndexAndDelete(t *testing.T) {
	route, err := deriver.Route("hello", testOwner)
	require.NoError(t, err)
	index, err := deriver.RouteIndex(testOwner)
	require.NoError(t, err)

	ix, err := builder.UpdateRouteIndex(testOwner, index, route.Seed, IndexRemove)
	require.NoError(t, err)
	assert.Len(t, ix.Accounts, 3)
	assert.True(t, ix.Accounts[1].IsWritable)
	op, ok := ix.Opcode()
	assert.True(t, ok)
	assert.Equal(t, uint64(OpRouteIndexUpdate), op)

	p, err := Decode(ix.Data)
	require.NoError(t, err)
	upd := p.(RouteIndexUpdate)
	assert.Equal(t, IndexRemove, upd.Operation)
	assert.Equal(t, index.Bump, *upd.BumpSeed)

	del, err := builder.DeleteAccount(testOwner, route, 890_880)
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountMeta{
		{Pubkey: testOwner, IsSigner: true, IsWritable: true},
		{Pubkey: route.Pubkey, IsWritable: true},
	}, del.Accounts)
}

func TestBuilder_Socb(t *testing.T) {
	socb, err := deriver.Socb("cfg", testOwner)
	require.NoError(t, err)
	index, err := deriver.SocbIndex(testOwner)
	require.NoError(t, err)

	list, err := builder.ListSocb(testOwner, index, socb.Seed)
	require.NoError(t, err)
	assert.Equal(t, index.Bump, list.Data[8])

	write, err := builder.WriteSocb(testOwner, socb, index, domain.SignedOnchainBytes{OwnerPubkey: testOwner, Inner: []byte("v")})
	require.NoError(t, err)
	assert.Equal(t, index.Pubkey, write.Accounts[3].Pubkey, "写 SOCB 时必须带上索引账户")
	assert.False(t, write.Accounts[3].IsWritable)
}
