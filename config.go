package ingestguard

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Storage driver (memory, local, s3)
	Driver string `env:"INGESTGUARD_DRIVER,default:local"`

	// Local driver configuration
	LocalBasePath string `env:"INGESTGUARD_LOCAL_BASE_PATH,default:./uploads"`

	// S3 driver configuration
	S3Region          string `env:"INGESTGUARD_S3_REGION,default:us-east-1"`
	S3Bucket          string `env:"INGESTGUARD_S3_BUCKET"`
	S3Prefix          string `env:"INGESTGUARD_S3_PREFIX"`
	S3Endpoint        string `env:"INGESTGUARD_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"INGESTGUARD_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"INGESTGUARD_S3_SECRET_ACCESS_KEY"`
	S3ForcePathStyle  bool   `env:"INGESTGUARD_S3_FORCE_PATH_STYLE,default:false"`

	// Upload limits
	MaxUploadSize int64 `env:"INGESTGUARD_MAX_UPLOAD_SIZE,default:10485760"` // 10MB
	MaxMarkupSize int   `env:"INGESTGUARD_MAX_MARKUP_SIZE,default:102400"`   // 100KB per rich-text field

	// Extension allow-lists, comma-separated
	AllowedExtensions string `env:"INGESTGUARD_ALLOWED_EXTENSIONS,default:png,jpg,jpeg,gif,pdf,xml,nessus,txt"`
	ImageExtensions   string `env:"INGESTGUARD_IMAGE_EXTENSIONS,default:png,jpg,jpeg,gif,webp,svg"`

	// Glob patterns matched against the lowercased original filename
	BlockedNamePatterns string `env:"INGESTGUARD_BLOCKED_NAME_PATTERNS,default:*.php*,*.phtml*,*.jsp*,*.asp*,*.exe*,.*"`

	// Storage key naming: uuid or checksum
	Naming       string `env:"INGESTGUARD_NAMING,default:uuid"`
	PublicPrefix string `env:"INGESTGUARD_PUBLIC_PREFIX,default:/uploads/"`

	// Logging
	LogLevel  string `env:"INGESTGUARD_LOG_LEVEL,default:info"`
	LogFormat string `env:"INGESTGUARD_LOG_FORMAT,default:text"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the configuration GetConfig yields with an empty
// environment.
func DefaultConfig() *Config {
	return &Config{
		Driver:              "local",
		LocalBasePath:       "./uploads",
		S3Region:            "us-east-1",
		MaxUploadSize:       10 << 20,
		MaxMarkupSize:       100 << 10,
		AllowedExtensions:   "png,jpg,jpeg,gif,pdf,xml,nessus,txt",
		ImageExtensions:     "png,jpg,jpeg,gif,webp,svg",
		BlockedNamePatterns: "*.php*,*.phtml*,*.jsp*,*.asp*,*.exe*,.*",
		Naming:              NamingUUID,
		PublicPrefix:        "/uploads/",
		LogLevel:            "info",
		LogFormat:           "text",
	}
}
