package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Bot-level settings (command prefix, mail sender identity, template key)
// live in the DynamoDB config table instead; see infrastructure/dynamo.
type Config struct {
	AppEnv  string
	OpsPort string

	GatewayToken string // chat platform bot token; required

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables

	S3BucketName string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	SNSTopicARN string // optional ops notification topic

	RedisAddr     string // optional; vote tallies disabled when empty
	RedisPassword string

	ConfirmTimeout time.Duration // email-change confirmation window

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiryHours    int

	AdminPasswordHash string // bcrypt hash for the ops API login

	AllowedOrigins []string // CORS allowed origins for the ops API
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users  string
	Config string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		OpsPort: getEnv("OPS_PORT", "3000"),

		GatewayToken: getEnv("GATEWAY_TOKEN", ""),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:  getEnv("DYNAMO_TABLE_USERS", "bot_users"),
			Config: getEnv("DYNAMO_TABLE_CONFIG", "bot_config"),
		},

		S3BucketName: getEnv("S3_BUCKET_NAME", "walrusbot-assets"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSTopicARN: getEnv("SNS_TOPIC_ARN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		ConfirmTimeout: time.Duration(getEnvInt("CONFIRM_TIMEOUT_SECONDS", 30)) * time.Second,

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiryHours:    getEnvInt("JWT_EXPIRY_HOURS", 12),

		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate checks the keys the process cannot run without.
func (c *Config) Validate() error {
	if c.GatewayToken == "" {
		return fmt.Errorf("GATEWAY_TOKEN is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
