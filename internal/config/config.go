package config

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// ==================== Config 全局配置 ====================

// Config 进程级配置，启动时从环境变量读取一次
type Config struct {
	ServerPort  string
	DatabaseDSN string

	// iFood 接入配置
	IfoodBaseURL string
	ClientID     string
	ClientSecret string
	MerchantID   string
	GrantType    string // client_credentials / authorization_code

	// 启动时是否自动开启事件轮询
	PollingAutoStart bool
}

// Load 加载配置
// .env 文件存在则先加载，不存在不报错 (生产环境直接用环境变量)
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=ifood password=ifood dbname=ifood_partner port=5432 sslmode=disable"),

		IfoodBaseURL: getEnv("IFOOD_BASE_URL", "https://merchant-api.ifood.com.br"),
		ClientID:     getEnv("IFOOD_CLIENT_ID", ""),
		ClientSecret: getEnv("IFOOD_CLIENT_SECRET", ""),
		MerchantID:   getEnv("IFOOD_MERCHANT_ID", ""),
		GrantType:    getEnv("IFOOD_GRANT_TYPE", "client_credentials"),

		PollingAutoStart: getEnv("POLLING_AUTO_START", "true") == "true",
	}
}

// ValidateCredentials 校验接入凭证
// 缺少凭证属于配置错误，应在相关组件启动时直接失败，不做重试
func (c *Config) ValidateCredentials() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return errors.New("IFOOD_CLIENT_ID 和 IFOOD_CLIENT_SECRET 是必填配置")
	}
	return nil
}

// getEnv 读取环境变量，为空时返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
