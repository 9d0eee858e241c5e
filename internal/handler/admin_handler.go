package handler

import (
	"custody-core/internal/handler/request"
	"custody-core/internal/handler/response"
	"custody-core/internal/service"
	"custody-core/internal/service/scanner"
	"custody-core/pkg/chains"
	"custody-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

// AdminHandler 特权运维接口。
// 这些路由必须挂在内网 + 管理端鉴权之后，助记词明文只经过 Generate/Decrypt 两处。
type AdminHandler struct {
	masterKeys service.MasterKeys
	scanners   *scanner.Registry
}

func NewAdminHandler(masterKeys service.MasterKeys, scanners *scanner.Registry) *AdminHandler {
	return &AdminHandler{masterKeys: masterKeys, scanners: scanners}
}

// GenerateMasterKey 生成主密钥
// @Summary 生成新的主助记词并加密存档
// @Description 返回体是调用方唯一一次拿到明文的机会，必须当场抄录备份
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/admin/master_keys [post]
func (h *AdminHandler) GenerateMasterKey(c *gin.Context) {
	record, mnemonic, err := h.masterKeys.Generate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"key_id":      record.KeyID,
		"kdf_version": record.KDFVersion,
		"mnemonic":    mnemonic, // 仅此一次
	})
}

// DecryptMasterKey 解密主密钥 (特权接口)
// @Summary 解出明文助记词
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request.DecryptMasterKeyRequest true "Decrypt Request"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/master_keys/decrypt [post]
func (h *AdminHandler) DecryptMasterKey(c *gin.Context) {
	var req request.DecryptMasterKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	mnemonic, err := h.masterKeys.Decrypt(c.Request.Context(), req.KeyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"mnemonic": mnemonic})
}

// VerifyMasterKey 备份抽查
// @Summary 抽查助记词备份的若干位置
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request.VerifyMasterKeyRequest true "Verify Request"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/master_keys/verify [post]
func (h *AdminHandler) VerifyMasterKey(c *gin.Context) {
	var req request.VerifyMasterKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	ok, err := h.masterKeys.Verify(c.Request.Context(), req.KeyID, req.Positions, req.Words)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"verified": ok})
}

// InitWalletRoots 初始化钱包根
// @Summary 从主密钥为用户初始化各链的钱包根
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request.InitWalletRootsRequest true "Init Request"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/wallet_roots [post]
func (h *AdminHandler) InitWalletRoots(c *gin.Context) {
	var req request.InitWalletRootsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	var targets []chains.Chain
	for _, name := range req.Chains {
		targets = append(targets, chains.Chain(name))
	}

	roots, err := h.masterKeys.InitWalletRoots(c.Request.Context(), req.KeyID, req.UserID, targets)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"roots": roots})
}

// TriggerScan 手动触发一轮扫描
// @Summary 立即扫描某条链 (该链全部资产)
// @Tags Admin
// @Produce json
// @Param chain path string true "Chain" Enums(ETH, BTC, TRX, XRP, ADA)
// @Success 200 {object} response.Response
// @Router /api/v1/admin/scan/{chain} [post]
func (h *AdminHandler) TriggerScan(c *gin.Context) {
	chain := chains.Chain(c.Param("chain"))
	scanners := h.scanners.Get(chain)
	if len(scanners) == 0 {
		response.Error(c, errno.ErrScannerNotFound)
		return
	}

	var summaries []*scanner.Summary
	for _, sc := range scanners {
		summary, err := sc.Scan(c.Request.Context())
		if err != nil {
			response.Error(c, errno.ErrProviderUnavailable)
			return
		}
		summaries = append(summaries, summary)
	}
	response.Success(c, gin.H{"summaries": summaries})
}
