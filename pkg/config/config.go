package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig              `mapstructure:"app"`
	DB     DBConfig               `mapstructure:"db"`
	Redis  RedisConfig            `mapstructure:"redis"`
	Kafka  KafkaConfig            `mapstructure:"kafka"`
	Vault  VaultConfig            `mapstructure:"vault"`
	Chains map[string]ChainConfig `mapstructure:"chains"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
	Network  string `mapstructure:"network"` // "mainnet" or "testnet"
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

// VaultConfig 主密钥加密配置
// Secret 是长期密封密钥，必须通过环境变量 VAULT_SECRET 注入，任何地方不落盘
type VaultConfig struct {
	Secret string `mapstructure:"secret"`
}

// ChainConfig 每条链独立的扫描参数。
// assets 列出该链要扫的全部资产 (原生币 + 合约代币)，每项一个独立扫描器
// 和独立游标；assets 为空时退化为只扫原生币一项。
type ChainConfig struct {
	ProviderURL     string        `mapstructure:"provider_url"`
	APIKey          string        `mapstructure:"api_key"`          // trongrid / blockfrost 等需要的凭证
	Assets          []AssetConfig `mapstructure:"assets"`           // 该链要扫的资产列表
	Confirmations   uint64        `mapstructure:"confirmations"`    // 最小确认数
	DustFloor       string        `mapstructure:"dust_floor"`       // 原生币尘埃线，基础单位整数串
	BootstrapWindow uint64        `mapstructure:"bootstrap_window"` // 无游标时回扫的区块数
	ScanCron        string        `mapstructure:"scan_cron"`        // 扫描调度表达式
}

// AssetConfig 链上单个资产的扫描参数
type AssetConfig struct {
	Asset         string `mapstructure:"asset"`          // 记账资产名，空则取链名
	TokenContract string `mapstructure:"token_contract"` // 非空则扫该合约的代币，空则扫原生币
	DustFloor     string `mapstructure:"dust_floor"`     // 空则沿用链级 dust_floor
}

var Global Config

func Init() {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name
	viper.AddConfigPath(".")      // optionally look for config in the working directory
	viper.AddConfigPath("./config")

	// 环境变量设置
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error if desired
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			// Config file was found but another error was produced
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")
	viper.SetDefault("app.network", "mainnet")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "custody_user")
	viper.SetDefault("db.password", "custody_password")
	viper.SetDefault("db.name", "custody_db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.mq_type", "redis")

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})

	// 每链的扫描默认值：确认数按"重组成本越低确认越多"原则拉开
	viper.SetDefault("chains.ETH.confirmations", 12)
	viper.SetDefault("chains.ETH.dust_floor", "10000000000000") // 0.00001 ETH (wei)
	viper.SetDefault("chains.ETH.bootstrap_window", 128)
	viper.SetDefault("chains.ETH.scan_cron", "@every 15s")
	viper.SetDefault("chains.BTC.confirmations", 3)
	viper.SetDefault("chains.BTC.dust_floor", "10000") // 0.0001 BTC (sat)
	viper.SetDefault("chains.BTC.bootstrap_window", 12)
	viper.SetDefault("chains.BTC.scan_cron", "@every 2m")
	viper.SetDefault("chains.TRX.confirmations", 19)
	viper.SetDefault("chains.TRX.dust_floor", "100000") // 0.1 TRX (sun)
	viper.SetDefault("chains.TRX.bootstrap_window", 200)
	viper.SetDefault("chains.TRX.scan_cron", "@every 10s")
	viper.SetDefault("chains.XRP.confirmations", 1)
	viper.SetDefault("chains.XRP.dust_floor", "1000000") // 1 XRP (drops)
	viper.SetDefault("chains.XRP.bootstrap_window", 256)
	viper.SetDefault("chains.XRP.scan_cron", "@every 10s")
	viper.SetDefault("chains.ADA.confirmations", 15)
	viper.SetDefault("chains.ADA.dust_floor", "1000000") // 1 ADA (lovelace)
	viper.SetDefault("chains.ADA.bootstrap_window", 100)
	viper.SetDefault("chains.ADA.scan_cron", "@every 30s")
}
