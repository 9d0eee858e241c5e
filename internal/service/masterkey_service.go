package service

import (
	"context"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"custody-core/internal/model"
	"custody-core/pkg/bip39"
	"custody-core/pkg/chains"
	"custody-core/pkg/errno"
	"custody-core/pkg/hdkey"
	"custody-core/pkg/logger"
	"custody-core/pkg/safe_random"
	"custody-core/pkg/vault"
)

// MasterKeyService 主密钥生命周期管理
// 约束: 助记词明文只在 Generate 返回一次；解密路径上不落任何明文日志
type MasterKeyService struct {
	db        *gorm.DB
	vault     *vault.Vault
	mnemonics *bip39.MnemonicService
	network   chains.Network
}

func NewMasterKeyService(db *gorm.DB, v *vault.Vault, network chains.Network) *MasterKeyService {
	return &MasterKeyService{
		db:        db,
		vault:     v,
		mnemonics: bip39.NewMnemonicService(),
		network:   network,
	}
}

// Generate 生成 24 词助记词并加密存档。
// 旧的 active 记录会被停用 (不删除)，新记录成为唯一 active。
// 返回值里的明文是调用方唯一一次拿到助记词的机会。
func (s *MasterKeyService) Generate(ctx context.Context) (*model.MasterKey, string, error) {
	mnemonic, err := s.mnemonics.GenerateMnemonic(256)
	if err != nil {
		logger.Error("生成助记词失败", zap.Error(err))
		return nil, "", errno.InternalServerError
	}

	sealed, err := s.vault.Encrypt(mnemonic)
	if err != nil {
		logger.Error("加密助记词失败", zap.Error(err))
		return nil, "", errno.InternalServerError
	}

	keyID, err := safe_random.GenerateRandomHexString(16)
	if err != nil {
		return nil, "", errno.InternalServerError
	}

	record := &model.MasterKey{
		KeyID:       keyID,
		Ciphertext:  sealed.Ciphertext,
		Nonce:       sealed.Nonce,
		Salt:        sealed.Salt,
		KDFVersion:  sealed.KDFVersion,
		AuthContext: sealed.Context,
		Active:      true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.MasterKey{}).
			Where("active = ?", true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		logger.Error("保存主密钥记录失败", zap.Error(err))
		return nil, "", errno.ErrDatabase
	}

	logger.Info("主密钥已生成", zap.String("key_id", keyID), zap.Int("kdf_version", record.KDFVersion))
	return record, mnemonic, nil
}

// Decrypt 解出明文助记词。仅限内部特权调用方，调用方负责用后即焚。
func (s *MasterKeyService) Decrypt(ctx context.Context, keyID string) (string, error) {
	record, err := s.loadKey(ctx, keyID)
	if err != nil {
		return "", err
	}

	plaintext, err := s.vault.Decrypt(&vault.Sealed{
		Ciphertext: record.Ciphertext,
		Nonce:      record.Nonce,
		Salt:       record.Salt,
		KDFVersion: record.KDFVersion,
		Context:    record.AuthContext,
	})
	if err != nil {
		// 只记 key_id，绝不记密文学材料
		logger.Error("主密钥解密失败", zap.String("key_id", keyID))
		return "", errno.ErrDecryptFailed
	}
	return plaintext, nil
}

// Verify 抽查备份: 对照给定位置上的单词是否与存档助记词一致。
// 全对则把 BackupVerified 置位。任何分支都不把单词写进日志。
func (s *MasterKeyService) Verify(ctx context.Context, keyID string, positions []int, words []string) (bool, error) {
	if len(positions) == 0 || len(positions) != len(words) {
		return false, errno.ErrVerifyPositionOutOfRange
	}

	mnemonic, err := s.Decrypt(ctx, keyID)
	if err != nil {
		return false, err
	}
	fields := strings.Fields(mnemonic)

	for i, pos := range positions {
		// 位置从 1 开始，贴近纸面备份的书写习惯
		if pos < 1 || pos > len(fields) {
			return false, errno.ErrVerifyPositionOutOfRange
		}
		if !strings.EqualFold(strings.TrimSpace(words[i]), fields[pos-1]) {
			logger.Warn("主密钥备份核对失败", zap.String("key_id", keyID), zap.Int("position", pos))
			return false, nil
		}
	}

	if err := s.db.WithContext(ctx).Model(&model.MasterKey{}).
		Where("key_id = ?", keyID).
		Update("backup_verified", true).Error; err != nil {
		return false, errno.ErrDatabase
	}
	logger.Info("主密钥备份核对通过", zap.String("key_id", keyID))
	return true, nil
}

// InitWalletRoots 解密一次助记词，为用户按链派生账户级 xpub 并落 WalletRoot。
// 用户 ID 直接充当 BIP44 账户级的硬化索引，每个用户一棵独立密钥树，
// 不同用户在同一索引上派生出的地址必然不同。
// 已存在的 (user, chain, network) 根保持不动。返回值不含任何私钥材料。
func (s *MasterKeyService) InitWalletRoots(ctx context.Context, keyID string, userID uint64, targets []chains.Chain) ([]model.WalletRoot, error) {
	if userID == 0 || userID > chains.MaxAccount {
		return nil, errno.ErrUserIDOutOfRange
	}
	account := uint32(userID)
	if len(targets) == 0 {
		targets = chains.Supported()
	}
	for _, c := range targets {
		if !chains.IsSupported(c) {
			return nil, errno.ErrUnsupportedChain
		}
	}

	mnemonic, err := s.Decrypt(ctx, keyID)
	if err != nil {
		return nil, err
	}

	seed := s.mnemonics.MnemonicToSeed(mnemonic, "")
	params := &chaincfg.MainNetParams
	if s.network == chains.NetworkTestnet {
		params = &chaincfg.TestNet3Params
	}
	wallet, err := hdkey.NewMasterKeyFromSeed(seed, params)
	if err != nil {
		return nil, errno.InternalServerError
	}

	var roots []model.WalletRoot
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range targets {
			desc, err := chains.ForChain(c)
			if err != nil {
				return err
			}

			var existing model.WalletRoot
			err = tx.Where("user_id = ? AND chain = ? AND network = ?", userID, string(c), string(s.network)).
				First(&existing).Error
			if err == nil {
				roots = append(roots, existing)
				continue
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}

			root, err := desc.DeriveRoot(wallet, s.network, account)
			if err != nil {
				return err
			}
			record := model.WalletRoot{
				UserID:       userID,
				Chain:        string(c),
				Network:      string(s.network),
				AccountXPub:  root.AccountXPub,
				ExternalXPub: root.ExternalXPub,
				StakeXPub:    root.StakeXPub,
				PathTemplate: desc.AccountPath(s.network, account),
				NextIndex:    0,
				Active:       true,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			roots = append(roots, record)
		}
		return nil
	})
	if err != nil {
		logger.Error("初始化钱包根失败", zap.Uint64("user_id", userID), zap.Error(err))
		return nil, errno.ErrDatabase
	}

	logger.Info("钱包根初始化完成",
		zap.Uint64("user_id", userID),
		zap.String("key_id", keyID),
		zap.Int("roots", len(roots)))
	return roots, nil
}

func (s *MasterKeyService) loadKey(ctx context.Context, keyID string) (*model.MasterKey, error) {
	var record model.MasterKey
	query := s.db.WithContext(ctx)
	if keyID == "" {
		// 缺省取当前 active 记录
		query = query.Where("active = ?", true)
	} else {
		query = query.Where("key_id = ?", keyID)
	}
	if err := query.First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errno.ErrMasterKeyNotFound
		}
		return nil, errno.ErrDatabase
	}
	return &record, nil
}
