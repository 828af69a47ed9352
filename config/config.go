package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Payments PaymentsConfig `mapstructure:"payments"`
	Billing  BillingConfig  `mapstructure:"billing"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite, mysql
	Path         string `mapstructure:"path"`   // sqlite 文件路径
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type TelegramConfig struct {
	BotToken        string  `mapstructure:"bot_token"`
	ChannelUsername string  `mapstructure:"channel_username"` // 强制关注的频道，如 @ZentraAI_Official
	ChannelLink     string  `mapstructure:"channel_link"`
	AdminIDs        []int64 `mapstructure:"admin_ids"` // 管理员统计命令白名单
	PollTimeout     int     `mapstructure:"poll_timeout"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
	RateLimit   float64 `mapstructure:"rate_limit"` // 每秒请求数
	RateBurst   int     `mapstructure:"rate_burst"`
}

type PaymentsConfig struct {
	IPNSecret   string   `mapstructure:"ipn_secret"` // NOWPayments IPN 签名密钥
	PaymentURL  string   `mapstructure:"payment_url"`
	StatsTokens []string `mapstructure:"stats_tokens"` // 统计接口的访问令牌白名单
}

type BillingConfig struct {
	FreeDailyLimit   int     `mapstructure:"free_daily_limit"`
	TextCost         float64 `mapstructure:"text_cost"`
	ImageCost        float64 `mapstructure:"image_cost"`
	SubscriptionDays int     `mapstructure:"subscription_days"`
	SubscriberBudget float64 `mapstructure:"subscriber_budget"`
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Billing.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "zentra_ai.db")
	viper.SetDefault("telegram.poll_timeout", 60)
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.max_tokens", 1024)
	viper.SetDefault("openai.rate_limit", 10)
	viper.SetDefault("openai.rate_burst", 5)
	viper.SetDefault("billing.free_daily_limit", 3)
	viper.SetDefault("billing.text_cost", 0.10)
	viper.SetDefault("billing.image_cost", 0.04)
	viper.SetDefault("billing.subscription_days", 30)
	viper.SetDefault("billing.subscriber_budget", 6.0)
}

// Validate 启动时校验计费常量，配置错误在启动阶段暴露，不在请求路径上重复检查
func (c *BillingConfig) Validate() error {
	if c.FreeDailyLimit <= 0 {
		return fmt.Errorf("billing: free_daily_limit must be positive, got %d", c.FreeDailyLimit)
	}
	if c.TextCost <= 0 {
		return fmt.Errorf("billing: text_cost must be positive, got %.2f", c.TextCost)
	}
	if c.ImageCost <= 0 {
		return fmt.Errorf("billing: image_cost must be positive, got %.2f", c.ImageCost)
	}
	if c.SubscriptionDays <= 0 {
		return fmt.Errorf("billing: subscription_days must be positive, got %d", c.SubscriptionDays)
	}
	if c.SubscriberBudget <= 0 {
		return fmt.Errorf("billing: subscriber_budget must be positive, got %.2f", c.SubscriberBudget)
	}
	return nil
}
