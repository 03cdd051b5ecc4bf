package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 统一配置结构
type Config struct {
	Server   ServerConfig
	Collab   CollabConfig
	Log      LogConfig
	Security SecurityConfig
	Engine   EngineConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Env  string // dev, staging, production
	Port string
}

// CollabConfig 外部协作方地址配置
// 上传、登记、总览与远程配置均为外部服务，引擎只通过 HTTP 调用
type CollabConfig struct {
	UploadURL   string
	SubmitURL   string
	OverviewURL string
	ConfigURL   string // 可为空，为空时仅使用内置目录默认值
	Timeout     time.Duration
}

// LogConfig 日志配置
type LogConfig struct {
	Level string // debug, info, warn, error
	File  string // 轮转日志文件路径，可为空
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWTSecret          string
	CORSAllowedOrigins []string
}

// EngineConfig 周任务引擎配置
type EngineConfig struct {
	CatalogFile  string        // 目录覆盖文件（YAML），可为空
	RefreshDelay time.Duration // 登记成功后的二次快照刷新延迟
}

// GlobalConfig 全局配置实例
var GlobalConfig *Config

// LoadConfig 从环境变量加载配置
// 当前目录存在 .env 时先行加载（不覆盖已设置的变量）
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Env:  getEnv("ENV", "dev"),
			Port: getEnv("PORT", "8000"),
		},
		Collab: CollabConfig{
			UploadURL:   getEnv("UPLOAD_SERVICE_URL", "http://localhost:8081"),
			SubmitURL:   getEnv("SUBMIT_SERVICE_URL", "http://localhost:8082"),
			OverviewURL: getEnv("OVERVIEW_SERVICE_URL", "http://localhost:8082"),
			ConfigURL:   getEnv("CONFIG_SERVICE_URL", ""),
			Timeout:     getDurationEnv("COLLAB_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Security: SecurityConfig{
			JWTSecret:          getEnv("MEMBER_JWT_SECRET", ""),
			CORSAllowedOrigins: parseStringList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Engine: EngineConfig{
			CatalogFile:  getEnv("CATALOG_FILE", ""),
			RefreshDelay: getDurationEnv("SNAPSHOT_REFRESH_DELAY", 10*time.Second),
		},
	}

	GlobalConfig = cfg
	return cfg, nil
}

// ValidateConfig 验证配置的有效性
func ValidateConfig(cfg *Config) error {
	var errors []string

	// 1. JWT Secret 验证
	if cfg.Security.JWTSecret == "" {
		errors = append(errors, "MEMBER_JWT_SECRET is required")
	} else if len(cfg.Security.JWTSecret) < 32 {
		errors = append(errors, "MEMBER_JWT_SECRET must be at least 32 characters long")
	}

	// 2. 端口验证
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid PORT value: %s (must be 1-65535)", cfg.Server.Port))
	}

	// 3. 日志级别验证
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Log.Level] {
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL: %s (must be: debug, info, warn, error)", cfg.Log.Level))
	}

	// 4. 环境验证
	validEnvs := map[string]bool{"dev": true, "development": true, "staging": true, "production": true}
	if !validEnvs[cfg.Server.Env] {
		errors = append(errors, fmt.Sprintf("invalid ENV: %s (must be: dev, development, staging, production)", cfg.Server.Env))
	}

	// 5. 协作方地址验证
	if cfg.Collab.UploadURL == "" {
		errors = append(errors, "UPLOAD_SERVICE_URL is required")
	}
	if cfg.Collab.SubmitURL == "" {
		errors = append(errors, "SUBMIT_SERVICE_URL is required")
	}
	if cfg.Collab.OverviewURL == "" {
		errors = append(errors, "OVERVIEW_SERVICE_URL is required")
	}

	// 6. 刷新延迟验证
	if cfg.Engine.RefreshDelay < 0 {
		errors = append(errors, "SNAPSHOT_REFRESH_DELAY must not be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// IsProduction 判断是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// IsDevelopment 判断是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "dev" || c.Server.Env == "development"
}

// GetServerAddr 获取服务器监听地址
func (c *Config) GetServerAddr() string {
	return ":" + c.Server.Port
}

// PrintConfig 打印配置（脱敏）
func (c *Config) PrintConfig() string {
	return fmt.Sprintf(`Configuration Loaded:
  Environment: %s
  Server Port: %s
  Collaborators:
    - Upload: %s
    - Submit: %s
    - Overview: %s
    - Remote Config: %s
  Logging:
    - Level: %s
    - File: %s
  Security:
    - JWT Secret: %s
    - CORS Origins: %v
  Engine:
    - Catalog File: %s
    - Refresh Delay: %s`,
		c.Server.Env,
		c.Server.Port,
		c.Collab.UploadURL,
		c.Collab.SubmitURL,
		c.Collab.OverviewURL,
		c.Collab.ConfigURL,
		c.Log.Level,
		c.Log.File,
		maskSecret(c.Security.JWTSecret),
		c.Security.CORSAllowedOrigins,
		c.Engine.CatalogFile,
		c.Engine.RefreshDelay,
	)
}

// 辅助函数

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv 获取时长类型环境变量，解析失败时返回默认值
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// parseStringList 解析逗号分隔的字符串列表
func parseStringList(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// maskSecret 对敏感信息进行脱敏
func maskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "***" + secret[len(secret)-4:]
}
