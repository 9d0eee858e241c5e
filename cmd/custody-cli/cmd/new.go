package cmd

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/cobra"

	"custody-core/pkg/bip39"
	"custody-core/pkg/chains"
	"custody-core/pkg/hdkey"
)

var (
	newTestnet bool
	newAccount uint32
)

// newCmd 代表 new 命令
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "生成一套新的主助记词和各链账户公钥",
	Long: `生成一个新的随机 24 词 BIP-39 助记词，并打印每条支持链的
账户级路径、xpub 和第 0 号充值地址。仅用于离线演练和备份核对。`,
	Run: func(cmd *cobra.Command, args []string) {
		network := chains.NetworkMainnet
		params := &chaincfg.MainNetParams
		if newTestnet {
			network = chains.NetworkTestnet
			params = &chaincfg.TestNet3Params
		}

		mnemonicService := bip39.NewMnemonicService()
		mnemonic, err := mnemonicService.GenerateMnemonic(256) // 24 words
		if err != nil {
			fmt.Printf("生成助记词失败: %v\n", err)
			return
		}
		fmt.Printf("助记词 (Mnemonic): \n%s\n", mnemonic)
		fmt.Println("---------------------------------------------------")

		seed := mnemonicService.MnemonicToSeed(mnemonic, "")
		wallet, err := hdkey.NewMasterKeyFromSeed(seed, params)
		if err != nil {
			fmt.Printf("生成主密钥失败: %v\n", err)
			return
		}

		for _, chain := range chains.Supported() {
			desc, err := chains.ForChain(chain)
			if err != nil {
				continue
			}
			root, err := desc.DeriveRoot(wallet, network, newAccount)
			if err != nil {
				fmt.Printf("%s 派生失败: %v\n", chain, err)
				continue
			}
			addr, err := desc.DeriveAddress(root, 0, network)
			if err != nil {
				fmt.Printf("%s 地址派生失败: %v\n", chain, err)
				continue
			}

			fmt.Printf("%s  %s\n", chain, desc.AccountPath(network, newAccount))
			fmt.Printf("  xpub:    %s\n", root.AccountXPub)
			fmt.Printf("  地址[0]: %s\n", addr.Address)
			if addr.StakeAddress != "" {
				fmt.Printf("  质押地址: %s\n", addr.StakeAddress)
			}
		}
		fmt.Println("---------------------------------------------------")
		fmt.Println("请妥善保管您的助记词！任何拥有助记词的人都可以控制该钱包的所有资产。")
	},
}

func init() {
	newCmd.Flags().BoolVar(&newTestnet, "testnet", false, "派生测试网地址")
	newCmd.Flags().Uint32Var(&newAccount, "account", 0, "硬化账户号 (线上即用户 ID)")
	rootCmd.AddCommand(newCmd)
}
