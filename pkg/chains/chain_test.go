package chains

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custody-core/pkg/hdkey"
)

// 固定种子，保证测试可复现
func testWallet(t *testing.T) *hdkey.Wallet {
	t.Helper()
	seed, _ := hex.DecodeString("fffcf9f6da3247d8a846f4b6113e617300112233445566778899aabbccddeeff")
	w, err := hdkey.NewMasterKeyFromSeed(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)
	return w
}

func TestForChain(t *testing.T) {
	for _, chain := range Supported() {
		d, err := ForChain(chain)
		require.NoError(t, err)
		assert.Equal(t, chain, d.Chain())
	}

	_, err := ForChain("DOGE")
	assert.ErrorIs(t, err, ErrUnsupportedChain)
}

// 每条链: 同索引两次派生结果一致，相邻索引结果不同
func TestDeriveAddress_DeterministicAndDistinct(t *testing.T) {
	wallet := testWallet(t)

	for _, chain := range Supported() {
		t.Run(string(chain), func(t *testing.T) {
			d, err := ForChain(chain)
			require.NoError(t, err)

			root, err := d.DeriveRoot(wallet, NetworkMainnet, 0)
			require.NoError(t, err)
			require.NotEmpty(t, root.AccountXPub)

			a0, err := d.DeriveAddress(root, 0, NetworkMainnet)
			require.NoError(t, err)
			a0again, err := d.DeriveAddress(root, 0, NetworkMainnet)
			require.NoError(t, err)
			a1, err := d.DeriveAddress(root, 1, NetworkMainnet)
			require.NoError(t, err)

			assert.Equal(t, a0.Address, a0again.Address, "同索引派生必须可复现")
			assert.NotEqual(t, a0.Address, a1.Address, "相邻索引不应产生相同地址")
		})
	}
}

// 账户号进入硬化路径: 不同账户的密钥树完全隔离，
// 同一索引派生出的地址绝不相同
func TestDeriveRoot_AccountSeparation(t *testing.T) {
	wallet := testWallet(t)

	for _, chain := range Supported() {
		t.Run(string(chain), func(t *testing.T) {
			d, err := ForChain(chain)
			require.NoError(t, err)

			assert.Contains(t, d.AccountPath(NetworkMainnet, 7), "/7'")

			r1, err := d.DeriveRoot(wallet, NetworkMainnet, 1)
			require.NoError(t, err)
			r2, err := d.DeriveRoot(wallet, NetworkMainnet, 2)
			require.NoError(t, err)
			assert.NotEqual(t, r1.AccountXPub, r2.AccountXPub, "不同账户不应共享 xpub")

			a1, err := d.DeriveAddress(r1, 0, NetworkMainnet)
			require.NoError(t, err)
			a2, err := d.DeriveAddress(r2, 0, NetworkMainnet)
			require.NoError(t, err)
			assert.NotEqual(t, a1.Address, a2.Address, "不同账户在同索引必须派生出不同地址")
		})
	}
}

func TestETHAddressFormat(t *testing.T) {
	wallet := testWallet(t)
	d, _ := ForChain(ChainETH)
	root, err := d.DeriveRoot(wallet, NetworkMainnet, 0)
	require.NoError(t, err)

	addr, err := d.DeriveAddress(root, 0, NetworkMainnet)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(addr.Address, "0x"))
	assert.Len(t, addr.Address, 42)
	// EIP-55: 重新计算校验和大小写必须吻合
	assert.Equal(t, "0x"+ToChecksumAddress(addr.Address), addr.Address)
	assert.Empty(t, addr.StakeAddress)
}

func TestToChecksumAddress_EIP55Vector(t *testing.T) {
	// EIP-55 规范中的已知向量
	got := ToChecksumAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	assert.Equal(t, "5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", got)
}

func TestBTCAddressFormat(t *testing.T) {
	wallet := testWallet(t)
	d, _ := ForChain(ChainBTC)

	mainRoot, err := d.DeriveRoot(wallet, NetworkMainnet, 0)
	require.NoError(t, err)
	addr, err := d.DeriveAddress(mainRoot, 0, NetworkMainnet)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr.Address, "bc1q"), "主网原生隔离见证地址应以 bc1q 开头, got %s", addr.Address)

	testRoot, err := d.DeriveRoot(wallet, NetworkTestnet, 0)
	require.NoError(t, err)
	taddr, err := d.DeriveAddress(testRoot, 0, NetworkTestnet)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(taddr.Address, "tb1q"), "测试网地址应以 tb1q 开头, got %s", taddr.Address)

	// 主网与测试网用不同的 coin type，地址自然不同
	assert.NotEqual(t, addr.Address, taddr.Address)
}

func TestTRXAddressFormat(t *testing.T) {
	wallet := testWallet(t)
	d, _ := ForChain(ChainTRX)
	root, err := d.DeriveRoot(wallet, NetworkMainnet, 0)
	require.NoError(t, err)

	addr, err := d.DeriveAddress(root, 0, NetworkMainnet)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr.Address, "T"), "Tron 地址应以 T 开头, got %s", addr.Address)
	assert.Len(t, addr.Address, 34)
}

func TestXRPAddressFormat(t *testing.T) {
	wallet := testWallet(t)
	d, _ := ForChain(ChainXRP)
	root, err := d.DeriveRoot(wallet, NetworkMainnet, 0)
	require.NoError(t, err)

	addr, err := d.DeriveAddress(root, 0, NetworkMainnet)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr.Address, "r"), "XRP 地址应以 r 开头, got %s", addr.Address)
	// 经典地址长度范围
	assert.GreaterOrEqual(t, len(addr.Address), 25)
	assert.LessOrEqual(t, len(addr.Address), 35)
}

func TestADAAddressFormat(t *testing.T) {
	wallet := testWallet(t)
	d, _ := ForChain(ChainADA)

	root, err := d.DeriveRoot(wallet, NetworkMainnet, 0)
	require.NoError(t, err)
	require.NotEmpty(t, root.ExternalXPub)
	require.NotEmpty(t, root.StakeXPub)

	addr, err := d.DeriveAddress(root, 0, NetworkMainnet)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr.Address, "addr1"), "主网基础地址应以 addr1 开头, got %s", addr.Address)
	assert.True(t, strings.HasPrefix(addr.StakeAddress, "stake1"), "奖励地址应以 stake1 开头, got %s", addr.StakeAddress)

	// 同一账户不同索引: 基础地址不同，但质押身份相同
	addr1, err := d.DeriveAddress(root, 1, NetworkMainnet)
	require.NoError(t, err)
	assert.NotEqual(t, addr.Address, addr1.Address)
	assert.Equal(t, addr.StakeAddress, addr1.StakeAddress)

	// 测试网前缀
	taddr, err := d.DeriveAddress(root, 0, NetworkTestnet)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(taddr.Address, "addr_test1"))
	assert.True(t, strings.HasPrefix(taddr.StakeAddress, "stake_test1"))
}

// ADA 缺少链级 xpub 时必须报错而不是退化
func TestADARequiresChainXPubs(t *testing.T) {
	wallet := testWallet(t)
	d, _ := ForChain(ChainADA)
	root, err := d.DeriveRoot(wallet, NetworkMainnet, 0)
	require.NoError(t, err)

	_, err = d.DeriveAddress(&Root{AccountXPub: root.AccountXPub}, 0, NetworkMainnet)
	assert.ErrorIs(t, err, ErrMissingXPub)
}
