package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type SafePingConfig struct {
	Env        string `yaml:"env" env:"SAFEPING_ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	PaymentDB  `yaml:"payment_db"`
	Payments   `yaml:"payments"`
	Chains     []ChainConfig   `yaml:"chains"`
	Sweep      SweepConfig     `yaml:"sweep"`
	Kafka      KafkaConfig     `yaml:"kafka"`
	AdminAuth  AdminAuthConfig `yaml:"admin_auth"`
	Telegram   TelegramConfig  `yaml:"telegram"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type PaymentDB struct {
	Dsn string `yaml:"dsn" env:"PAYMENT_DB_DSN"`
}

type Payments struct {
	MinAmount         string `yaml:"min_amount" env-default:"1"`
	MaxAmount         string `yaml:"max_amount" env-default:"10000"`
	DefaultTTLMinutes int    `yaml:"default_ttl_minutes" env-default:"30"`
	MaxTTLMinutes     int    `yaml:"max_ttl_minutes" env-default:"1440"`
}

type ChainConfig struct {
	Name              string `yaml:"name"` // polygon, bsc, tron
	RPCURL            string `yaml:"rpc_url"`
	ChainID           int64  `yaml:"chain_id"` // EVM networks only
	UsdtContract      string `yaml:"usdt_contract"`
	UsdtDecimals      int32  `yaml:"usdt_decimals"`
	OperatorKey       string `yaml:"operator_key" env:"SAFEPING_OPERATOR_KEY"`
	SpenderAddress    string `yaml:"spender_address"`    // address the payer grants allowance to
	CollectionAddress string `yaml:"collection_address"` // deposit wallet settlements land on
	RequestTimeoutS   int    `yaml:"request_timeout_seconds" env-default:"30"`
	GasLimit          uint64 `yaml:"gas_limit" env-default:"100000"`
	FeeLimitSun       int64  `yaml:"fee_limit_sun" env-default:"40000000"` // tron only
}

type SweepConfig struct {
	Enabled           bool              `yaml:"enabled" env-default:"false"`
	MinBalance        string            `yaml:"min_balance" env-default:"100"`
	MaxTransferAmount string            `yaml:"max_transfer_amount" env-default:"5000"`
	IntervalMinutes   int               `yaml:"interval_minutes" env-default:"60"`
	Destinations      map[string]string `yaml:"destinations"` // chain name -> treasury address
}

type KafkaConfig struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"payment-events"`
}

type AdminAuthConfig struct {
	RedisAddr     string `yaml:"redis_addr" env:"ADMIN_REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"ADMIN_REDIS_PASSWORD"`
	KeyPrefix     string `yaml:"key_prefix" env-default:"safeping:admin:"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

func MustLoad() *SafePingConfig {

	// Processing env config variable and file
	configPath := os.Getenv("SAFEPING_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("SAFEPING_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg SafePingConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
