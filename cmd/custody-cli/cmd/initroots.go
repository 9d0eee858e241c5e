package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"custody-core/internal/service"
	"custody-core/pkg/chains"
	"custody-core/pkg/config"
	"custody-core/pkg/database"
	"custody-core/pkg/logger"
	"custody-core/pkg/vault"
)

var (
	initKeyID  string
	initUserID uint64
	initChains []string
)

// initrootsCmd 为用户初始化各链钱包根。
// 需要数据库和 VAULT_SECRET；助记词只在进程内解密一次，不输出。
var initrootsCmd = &cobra.Command{
	Use:   "initroots",
	Short: "从主密钥为用户初始化各链的钱包根",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Init()
		logger.Init(config.Global.App.Env)
		defer logger.Sync()

		db, err := connectDB()
		if err != nil {
			return err
		}

		sealVault, err := vault.New(config.Global.Vault.Secret)
		if err != nil {
			return fmt.Errorf("Vault 初始化失败，检查 VAULT_SECRET: %w", err)
		}

		network := chains.Network(config.Global.App.Network)
		masterKeys := service.NewMasterKeyService(db, sealVault, network)

		var targets []chains.Chain
		for _, name := range initChains {
			targets = append(targets, chains.Chain(name))
		}

		roots, err := masterKeys.InitWalletRoots(context.Background(), initKeyID, initUserID, targets)
		if err != nil {
			return err
		}

		for _, root := range roots {
			fmt.Printf("%s (%s)  %s  next_index=%d\n", root.Chain, root.Network, root.PathTemplate, root.NextIndex)
		}
		return nil
	},
}

func connectDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)
	return database.ConnectPostgres(dsn)
}

func init() {
	initrootsCmd.Flags().StringVar(&initKeyID, "key-id", "", "主密钥 ID (空取当前 active)")
	initrootsCmd.Flags().Uint64Var(&initUserID, "user-id", 0, "用户 ID")
	initrootsCmd.Flags().StringSliceVar(&initChains, "chains", nil, "链列表，空则全部")
	_ = initrootsCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(initrootsCmd)
}
