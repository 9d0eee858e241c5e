package scanner

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"custody-core/internal/model"
	"custody-core/pkg/chains"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// :memory: 每个连接各一份库，必须锁死单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.DepositAddress{},
		&model.DepositTransaction{},
		&model.Account{},
		&model.OutboxMessage{},
	))
	return db
}

func testAddr(asset string) *model.DepositAddress {
	return &model.DepositAddress{
		ID:      1,
		UserID:  7,
		Chain:   "ETH",
		Network: "mainnet",
		Asset:   asset,
		Address: "0x88378003d250FE10694701E35A0a6829B073Ec35",
	}
}

// 低于尘埃线或零额的观察结果不落任何行
func TestRecord_DustFloorDropped(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db, nil)
	ctx := context.Background()
	addr := testAddr("ETH")
	floor := decimal.NewFromInt(10000)

	recorded, err := ledger.Record(ctx, addr, TxObservation{
		TxHash: "0xdust", Address: addr.Address,
		Amount: decimal.NewFromInt(9999), BlockHeight: 100,
	}, "ETH", 12, floor)
	require.NoError(t, err)
	assert.False(t, recorded)

	recorded, err = ledger.Record(ctx, addr, TxObservation{
		TxHash: "0xzero", Address: addr.Address,
		Amount: decimal.Zero, BlockHeight: 100,
	}, "ETH", 12, floor)
	require.NoError(t, err)
	assert.False(t, recorded)

	var count int64
	require.NoError(t, db.Model(&model.DepositTransaction{}).Count(&count).Error)
	assert.Zero(t, count, "尘埃线以下的交易不应产生台账行")

	// 正好踩线的金额要收
	recorded, err = ledger.Record(ctx, addr, TxObservation{
		TxHash: "0xonfloor", Address: addr.Address,
		Amount: floor, BlockHeight: 100,
	}, "ETH", 12, floor)
	require.NoError(t, err)
	assert.True(t, recorded)
}

// 入账资产以扫描器为准: 地址行标注 USDT 不影响原生币按 ETH 记账
func TestRecord_StampsScannerAsset(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db, nil)
	ctx := context.Background()
	addr := testAddr("USDT")
	amount := decimal.RequireFromString("1000000000000000000")

	recorded, err := ledger.Record(ctx, addr, TxObservation{
		TxHash: "0xnative", Address: addr.Address,
		Amount: amount, BlockHeight: 100,
	}, "ETH", 3, decimal.Zero)
	require.NoError(t, err)
	require.True(t, recorded)

	var row model.DepositTransaction
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, "ETH", row.Asset)

	credited, err := ledger.ConfirmPending(ctx, chains.ChainETH, chains.NetworkMainnet, "ETH", 102)
	require.NoError(t, err)
	assert.Equal(t, 1, credited)

	var account model.Account
	require.NoError(t, db.Where("user_id = ? AND asset = ?", addr.UserID, "ETH").First(&account).Error)
	assert.True(t, account.Balance.Equal(amount))

	err = db.Where("user_id = ? AND asset = ?", addr.UserID, "USDT").First(&model.Account{}).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "不应有余额落到地址行标注的资产上")
}

// 连续三轮确认推进: 未达标只涨确认数，达标那轮入账一次，之后不再动账
func TestConfirmPending_CreditsExactlyOnce(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db, nil)
	ctx := context.Background()
	addr := testAddr("ETH")
	amount := decimal.NewFromInt(5_000_000)

	recorded, err := ledger.Record(ctx, addr, TxObservation{
		TxHash: "0xabc", Address: addr.Address,
		Amount: amount, BlockHeight: 100,
	}, "ETH", 12, decimal.Zero)
	require.NoError(t, err)
	require.True(t, recorded)

	// 第 1 轮: 确认数不足，只推进计数
	credited, err := ledger.ConfirmPending(ctx, chains.ChainETH, chains.NetworkMainnet, "ETH", 105)
	require.NoError(t, err)
	assert.Zero(t, credited)

	var row model.DepositTransaction
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, model.DepositStatusPending, row.Status)
	assert.Equal(t, uint64(6), row.Confirmations)

	// 第 2 轮: 达标，入账
	credited, err = ledger.ConfirmPending(ctx, chains.ChainETH, chains.NetworkMainnet, "ETH", 111)
	require.NoError(t, err)
	assert.Equal(t, 1, credited)

	// 第 3 轮: 同一笔不再入账
	credited, err = ledger.ConfirmPending(ctx, chains.ChainETH, chains.NetworkMainnet, "ETH", 120)
	require.NoError(t, err)
	assert.Zero(t, credited)

	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, model.DepositStatusConfirmed, row.Status)
	require.NotNil(t, row.ConfirmedAt)

	var account model.Account
	require.NoError(t, db.Where("user_id = ? AND asset = ?", addr.UserID, "ETH").First(&account).Error)
	assert.True(t, account.Balance.Equal(amount), "三轮轮询后余额只应入账一次, got %s", account.Balance)
}

// 重复观察被唯一键静默吸收
func TestRecord_DuplicateAbsorbed(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db, nil)
	ctx := context.Background()
	addr := testAddr("ETH")
	ob := TxObservation{
		TxHash: "0xdup", Address: addr.Address,
		Amount: decimal.NewFromInt(1000), BlockHeight: 50,
	}

	recorded, err := ledger.Record(ctx, addr, ob, "ETH", 12, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = ledger.Record(ctx, addr, ob, "ETH", 12, decimal.Zero)
	require.NoError(t, err)
	assert.False(t, recorded)

	var count int64
	require.NoError(t, db.Model(&model.DepositTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// 链上执行失败的交易留档为 rejected，永不入账
func TestRecord_FailedTxNeverCredited(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db, nil)
	ctx := context.Background()
	addr := testAddr("ETH")

	recorded, err := ledger.Record(ctx, addr, TxObservation{
		TxHash: "0xrevert", Address: addr.Address,
		Amount: decimal.NewFromInt(1000), BlockHeight: 50, Failed: true,
	}, "ETH", 1, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, recorded)

	credited, err := ledger.ConfirmPending(ctx, chains.ChainETH, chains.NetworkMainnet, "ETH", 1000)
	require.NoError(t, err)
	assert.Zero(t, credited)

	var row model.DepositTransaction
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, model.DepositStatusRejected, row.Status)

	err = db.Where("user_id = ?", addr.UserID).First(&model.Account{}).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
