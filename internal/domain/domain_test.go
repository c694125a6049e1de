package domain

import (
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = b
	k[31] = 0xff
	return k
}

func TestParseSwapSide(t *testing.T) {
	cases := map[string]SwapSide{
		"bid":      SideBid,
		"ExactIn":  SideBid,
		" BID ":    SideBid,
		"ask":      SideAsk,
		"exactOut": SideAsk,
	}
	for in, want := range cases {
		got, err := ParseSwapSide(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSwapSide("sell")
	assert.Error(t, err)

	assert.Equal(t, "bid", SideBid.String())
	assert.Equal(t, "ask", SideAsk.String())
	assert.Equal(t, "unknown", SwapSide(7).String())
}

func TestPoolOrientation(t *testing.T) {
	a, b, c := key(0xa1), key(0xa2), key(0xa3)
	p := &Pool{TokenMintA: a, TokenMintB: b, ReserveA: big.NewInt(10), ReserveB: big.NewInt(20)}

	rIn, rOut, ok := p.Reserves(a, b)
	require.True(t, ok)
	assert.Equal(t, int64(10), rIn.Int64())
	assert.Equal(t, int64(20), rOut.Int64())

	rIn, rOut, ok = p.Reserves(b, a)
	require.True(t, ok)
	assert.Equal(t, int64(20), rIn.Int64())
	assert.Equal(t, int64(10), rOut.Int64())

	_, _, ok = p.Reserves(a, c)
	assert.False(t, ok)

	other, ok := p.OtherMint(b)
	require.True(t, ok)
	assert.Equal(t, a, other)
	_, ok = p.OtherMint(c)
	assert.False(t, ok)

	assert.True(t, p.Contains(a))
	assert.False(t, p.Contains(c))
}

func TestPoolLiquidityAndClone(t *testing.T) {
	p := &Pool{ReserveA: big.NewInt(1), ReserveB: big.NewInt(0)}
	assert.False(t, p.IsLiquid())
	p.ReserveB.SetInt64(5)
	assert.True(t, p.IsLiquid())
	assert.False(t, (&Pool{}).IsLiquid())

	cp := p.Clone()
	cp.ReserveA.SetInt64(100)
	assert.Equal(t, int64(1), p.ReserveA.Int64())
}

func TestSortedAddresses(t *testing.T) {
	reg := PoolRegistry{
		key(0x03): &Pool{},
		key(0x01): &Pool{},
		key(0x02): &Pool{},
	}
	assert.Equal(t, []solana.PublicKey{key(0x01), key(0x02), key(0x03)}, reg.SortedAddresses())
}

func TestMintLookup(t *testing.T) {
	reg := MintRegistry{key(0xa1): {Address: key(0xa1), Decimals: 9}}
	assert.Equal(t, uint8(9), reg.Lookup(key(0xa1)).Decimals)

	unknown := reg.Lookup(key(0xa2))
	assert.Equal(t, key(0xa2), unknown.Address)
	assert.Zero(t, unknown.Decimals)
}

func TestRouteInfoPath(t *testing.T) {
	assert.True(t, EmptyRouteInfo().IsEmpty())
	assert.Nil(t, EmptyRouteInfo().Path())

	a, b, c := key(0xa1), key(0xa2), key(0xa3)
	info := RouteInfo{Hops: []HopData{
		{SrcMint: MintInfo{Address: a}, DstMint: MintInfo{Address: b}},
		{SrcMint: MintInfo{Address: b}, DstMint: MintInfo{Address: c}},
	}}
	assert.False(t, info.IsEmpty())
	assert.Equal(t, []solana.PublicKey{a, b, c}, info.Path())
}
