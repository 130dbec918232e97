package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	JWTSecret     string           `json:"jwt_secret"`
	JWTTTLHours   int              `json:"jwt_ttl_hours"`
	Database      DatabaseConfig   `json:"database"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Mail          MailConfig       `json:"mail"`
	OTP           OTPConfig        `json:"otp"`
	Share         ShareConfig      `json:"share"`
	Upload        UploadConfig     `json:"upload"`
	Backup        BackupConfig     `json:"backup"`
	CORSAllowlist []string         `json:"cors_allowlist"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// OTPConfig selects the verification-code provider. Mode "fixed" issues
// FixedCode on every request (test deployments), "random" issues a fresh
// 6-digit code.
type OTPConfig struct {
	Mode      string `json:"mode"`
	FixedCode string `json:"fixed_code"`
}

type ShareConfig struct {
	BaseURL             string `json:"base_url"`
	DefaultTTLHours     int    `json:"default_ttl_hours"`
	MaxTTLHours         int    `json:"max_ttl_hours"`
	SweepCron           string `json:"sweep_cron"`
	SweepRetentionHours int    `json:"sweep_retention_hours"`
}

type UploadConfig struct {
	MaxSizeBytes int64    `json:"max_size_bytes"`
	AllowedTypes []string `json:"allowed_types"`
}

type BackupConfig struct {
	Cron      string          `json:"cron"`
	FileStore FileStoreConfig `json:"file_store"`
}

type FileStoreConfig struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database host/db_name/user are required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	switch cfg.OTP.Mode {
	case "":
		cfg.OTP.Mode = "fixed"
	case "fixed", "random":
	default:
		return nil, fmt.Errorf("otp.mode must be fixed or random")
	}
	if cfg.OTP.Mode == "fixed" && cfg.OTP.FixedCode == "" {
		cfg.OTP.FixedCode = "123456"
	}
	if cfg.Share.BaseURL == "" {
		cfg.Share.BaseURL = "http://localhost:5173"
	}
	if cfg.Share.DefaultTTLHours == 0 {
		cfg.Share.DefaultTTLHours = 24
	}
	if cfg.Share.MaxTTLHours == 0 {
		cfg.Share.MaxTTLHours = 720
	}
	if cfg.Share.SweepRetentionHours == 0 {
		cfg.Share.SweepRetentionHours = 24
	}
	if cfg.Upload.MaxSizeBytes == 0 {
		cfg.Upload.MaxSizeBytes = 5 * 1024 * 1024
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = []string{
			"application/pdf",
			"image/jpeg",
			"image/jpg",
			"image/png",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		}
	}
	if cfg.Backup.Cron != "" && cfg.Backup.FileStore.Type == "" {
		return nil, fmt.Errorf("backup.file_store.type is required when backup.cron is set")
	}
	return &cfg, nil
}
