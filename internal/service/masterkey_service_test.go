package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"custody-core/internal/model"
	"custody-core/pkg/chains"
	"custody-core/pkg/errno"
	"custody-core/pkg/vault"
)

func testMasterKeyService(t *testing.T) *MasterKeyService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.MasterKey{}, &model.WalletRoot{}))

	v, err := vault.New("unit-test-sealing-secret")
	require.NoError(t, err)
	return NewMasterKeyService(db, v, chains.NetworkMainnet)
}

// 用户 ID 充当硬化账户号: 不同用户从同一主密钥拿到的是两棵互不相交的密钥树
func TestInitWalletRoots_PerUserKeyTrees(t *testing.T) {
	s := testMasterKeyService(t)
	ctx := context.Background()

	_, _, err := s.Generate(ctx)
	require.NoError(t, err)

	targets := []chains.Chain{chains.ChainETH}
	roots1, err := s.InitWalletRoots(ctx, "", 1, targets)
	require.NoError(t, err)
	require.Len(t, roots1, 1)
	roots2, err := s.InitWalletRoots(ctx, "", 2, targets)
	require.NoError(t, err)
	require.Len(t, roots2, 1)

	assert.NotEqual(t, roots1[0].AccountXPub, roots2[0].AccountXPub, "不同用户不应共享 xpub")
	assert.Equal(t, "m/44'/60'/1'", roots1[0].PathTemplate)
	assert.Equal(t, "m/44'/60'/2'", roots2[0].PathTemplate)

	// 同索引派生出的充值地址必须不同
	desc, err := chains.ForChain(chains.ChainETH)
	require.NoError(t, err)
	a1, err := desc.DeriveAddress(&chains.Root{AccountXPub: roots1[0].AccountXPub}, 0, chains.NetworkMainnet)
	require.NoError(t, err)
	a2, err := desc.DeriveAddress(&chains.Root{AccountXPub: roots2[0].AccountXPub}, 0, chains.NetworkMainnet)
	require.NoError(t, err)
	assert.NotEqual(t, a1.Address, a2.Address)
}

// 重复初始化不动已有根
func TestInitWalletRoots_Idempotent(t *testing.T) {
	s := testMasterKeyService(t)
	ctx := context.Background()

	_, _, err := s.Generate(ctx)
	require.NoError(t, err)

	targets := []chains.Chain{chains.ChainETH}
	first, err := s.InitWalletRoots(ctx, "", 1, targets)
	require.NoError(t, err)
	again, err := s.InitWalletRoots(ctx, "", 1, targets)
	require.NoError(t, err)

	require.Len(t, again, 1)
	assert.Equal(t, first[0].ID, again[0].ID)
	assert.Equal(t, first[0].AccountXPub, again[0].AccountXPub)
}

// 用户 ID 超出硬化索引范围必须拒绝，而不是静默截断
func TestInitWalletRoots_UserIDRange(t *testing.T) {
	s := testMasterKeyService(t)
	ctx := context.Background()

	_, err := s.InitWalletRoots(ctx, "", 0, nil)
	assert.ErrorIs(t, err, errno.ErrUserIDOutOfRange)

	_, err = s.InitWalletRoots(ctx, "", uint64(chains.MaxAccount)+1, nil)
	assert.ErrorIs(t, err, errno.ErrUserIDOutOfRange)
}
