package routes

import (
	"custody-core/internal/handler"

	"github.com/gin-gonic/gin"
)

func RegisterWalletRoutes(rg *gin.RouterGroup, h *handler.WalletHandler) {
	walletGroup := rg.Group("/wallet")
	// Auth middleware here
	{
		walletGroup.POST("/deposit_address", h.GetDepositAddress)
	}
}
