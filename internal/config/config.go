package config

import (
	"os"
	"strconv"
	"time"
)

// ==================== 配置 ====================
// 全部从环境变量加载，未设置时取默认值（本地开发可直接起服务）

// Config 进程配置
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	Log     LogConfig
	Storage StorageConfig
	Status  StatusConfig
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr string // 监听地址，默认 :8080
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN string
}

// JWTConfig 本地会话签名配置
type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string // debug / info / warn / error
	Format string // json / console
}

// StorageConfig G-code 文件库存储配置
type StorageConfig struct {
	Provider  string // "s3" | "local"
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // 自定义端点（MinIO 等 S3 兼容存储）
	BasePath  string // 对象键前缀 / 本地目录
}

// StatusConfig 打印机状态刷新任务配置
type StatusConfig struct {
	RefreshInterval time.Duration
}

// Load 从环境变量加载配置
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8080"),
		},
		DB: DBConfig{
			DSN: getEnv("DB_DSN", "host=localhost user=farm password=farm dbname=bambufarm port=5432 sslmode=disable"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "bambufarm-secret-key-change-in-production"),
			AccessTokenTTL:  getDuration("JWT_ACCESS_TTL", 2*time.Hour),
			RefreshTokenTTL: getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Storage: StorageConfig{
			Provider:  getEnv("STORAGE_PROVIDER", "local"),
			Bucket:    getEnv("STORAGE_BUCKET", ""),
			Region:    getEnv("STORAGE_REGION", "us-east-1"),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			BasePath:  getEnv("STORAGE_BASE_PATH", "gcode"),
		},
		Status: StatusConfig{
			RefreshInterval: getDuration("STATUS_REFRESH_INTERVAL", 30*time.Second),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// 纯数字按秒处理
	if sec, err := strconv.Atoi(v); err == nil {
		return time.Duration(sec) * time.Second
	}
	return def
}
