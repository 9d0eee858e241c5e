package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmations(t *testing.T) {
	// 含首块: 刚上链即 1 个确认
	assert.Equal(t, uint64(1), confirmations(100, 100))
	assert.Equal(t, uint64(12), confirmations(111, 100))

	// 链顶还没到 (数据源不一致窗口)，不算确认
	assert.Equal(t, uint64(0), confirmations(99, 100))

	// 高度 0 视为未上链
	assert.Equal(t, uint64(0), confirmations(100, 0))
}

func TestScanFrom(t *testing.T) {
	// 有游标: 接着扫
	assert.Equal(t, uint64(500), scanFrom(500, 1000, 128))

	// 无游标: 只回看窗口
	assert.Equal(t, uint64(872), scanFrom(0, 1000, 128))

	// 链比窗口还短: 从头扫
	assert.Equal(t, uint64(0), scanFrom(0, 50, 128))

	// 窗口为 0: 不限制
	assert.Equal(t, uint64(0), scanFrom(0, 1000, 0))
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	result, err := retry(context.Background(), 3, time.Millisecond, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("临时故障")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	_, err := retry(context.Background(), 3, time.Millisecond, func() (int, error) {
		calls++
		return 0, errors.New("持续故障")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "重试应该是有界的")
}

func TestRetryHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := retry(ctx, 5, 10*time.Second, func() (int, error) {
		calls++
		return 0, errors.New("故障")
	})
	require.Error(t, err)
	// 第一次失败后等待退避时发现 context 已取消，立即放弃
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}
