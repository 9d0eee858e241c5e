package request

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

// key_id 可以不传: 空值表示选当前 active 主密钥
func TestMasterKeyRequests_KeyIDOptional(t *testing.T) {
	assert.NoError(t, binding.Validator.ValidateStruct(&DecryptMasterKeyRequest{}))

	assert.NoError(t, binding.Validator.ValidateStruct(&VerifyMasterKeyRequest{
		Positions: []int{1, 13},
		Words:     []string{"abandon", "zoo"},
	}))

	assert.NoError(t, binding.Validator.ValidateStruct(&InitWalletRootsRequest{UserID: 42}))
}

func TestVerifyMasterKeyRequest_PositionBounds(t *testing.T) {
	err := binding.Validator.ValidateStruct(&VerifyMasterKeyRequest{
		Positions: []int{25},
		Words:     []string{"abandon"},
	})
	assert.Error(t, err, "位置超出 24 词范围应被拒绝")
}
