package routes

import (
	"custody-core/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 特权路由，部署时挂内网 + 管理端鉴权
func RegisterAdminRoutes(rg *gin.RouterGroup, h *handler.AdminHandler) {
	adminGroup := rg.Group("/admin")
	// Admin auth middleware here
	{
		adminGroup.POST("/master_keys", h.GenerateMasterKey)
		adminGroup.POST("/master_keys/decrypt", h.DecryptMasterKey)
		adminGroup.POST("/master_keys/verify", h.VerifyMasterKey)
		adminGroup.POST("/wallet_roots", h.InitWalletRoots)
		adminGroup.POST("/scan/:chain", h.TriggerScan)
	}
}
