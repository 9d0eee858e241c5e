package handler

import (
	"custody-core/internal/handler/request"
	"custody-core/internal/handler/response"
	"custody-core/internal/service"
	"custody-core/pkg/chains"
	"custody-core/pkg/config"
	"custody-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	allocator service.AddressAllocator
}

func NewWalletHandler(allocator service.AddressAllocator) *WalletHandler {
	return &WalletHandler{allocator: allocator}
}

// GetDepositAddress 获取充值地址
// @Summary 获取充值地址
// @Description 获取或复用用户在某条链上的充值地址，幂等键必填
// @Tags Wallet
// @Accept json
// @Produce json
// @Param request body request.CreateDepositAddressRequest true "Deposit Address Request"
// @Success 200 {object} response.Response
// @Router /api/v1/wallet/deposit_address [post]
func (h *WalletHandler) GetDepositAddress(c *gin.Context) {
	var req request.CreateDepositAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	network := chains.Network(config.Global.App.Network)
	if req.Network != "" {
		network = chains.Network(req.Network)
	}

	result, err := h.allocator.Allocate(c.Request.Context(), req.UserID, service.AllocateParams{
		Chain:          chains.Chain(req.Chain),
		Network:        network,
		Asset:          req.Asset,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
