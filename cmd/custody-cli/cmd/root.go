package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "custody-cli",
	Short: "托管钱包运维命令行工具",
	Long: `custody-core 的离线运维工具。
支持生成 BIP-39 助记词、按链派生账户级 xpub，以及从 xpub 离线派生充值地址。
所有操作均在本地完成，不连接任何服务。`,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// 在这里可以定义全局标志 (Global Flags)
}
