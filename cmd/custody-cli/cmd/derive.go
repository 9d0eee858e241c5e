package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"custody-core/pkg/chains"
)

var (
	deriveChain   string
	deriveXPub    string
	deriveStake   string
	deriveIndex   uint32
	deriveTestnet bool
)

// deriveCmd 从账户级 xpub 离线派生充值地址
// 用于核对线上分配出的地址确实来自备份的公钥材料
var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "从 xpub 离线派生指定索引的充值地址",
	Run: func(cmd *cobra.Command, args []string) {
		network := chains.NetworkMainnet
		if deriveTestnet {
			network = chains.NetworkTestnet
		}

		desc, err := chains.ForChain(chains.Chain(deriveChain))
		if err != nil {
			fmt.Printf("不支持的链: %s\n", deriveChain)
			return
		}

		root := &chains.Root{AccountXPub: deriveXPub}
		if chains.Chain(deriveChain) == chains.ChainADA {
			// ADA 需要收款/质押两条链级 xpub
			root.ExternalXPub = deriveXPub
			root.StakeXPub = deriveStake
		}

		addr, err := desc.DeriveAddress(root, deriveIndex, network)
		if err != nil {
			fmt.Printf("派生失败: %v\n", err)
			return
		}

		fmt.Printf("%s 地址[%d]: %s\n", deriveChain, deriveIndex, addr.Address)
		if addr.StakeAddress != "" {
			fmt.Printf("质押地址: %s\n", addr.StakeAddress)
		}
	},
}

func init() {
	deriveCmd.Flags().StringVar(&deriveChain, "chain", "", "链 (ETH/BTC/TRX/XRP/ADA)")
	deriveCmd.Flags().StringVar(&deriveXPub, "xpub", "", "账户级 xpub (ADA 时为收款子链 xpub)")
	deriveCmd.Flags().StringVar(&deriveStake, "stake-xpub", "", "ADA 质押子链 xpub")
	deriveCmd.Flags().Uint32Var(&deriveIndex, "index", 0, "地址索引")
	deriveCmd.Flags().BoolVar(&deriveTestnet, "testnet", false, "派生测试网地址")
	_ = deriveCmd.MarkFlagRequired("chain")
	_ = deriveCmd.MarkFlagRequired("xpub")
	rootCmd.AddCommand(deriveCmd)
}
