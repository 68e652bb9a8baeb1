package ingestguard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gobeaver/beaver-kit/config"
)

// Global instance
var (
	defaultStore *Store
	defaultOnce  sync.Once
	defaultErr   error
)

// Builder provides a way to create Store instances with custom env prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global Store using the builder's prefix
func (b *Builder) Init() error {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a new Store using the builder's prefix
func (b *Builder) New(opts ...StoreOption) (*Store, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Init initializes the global Store
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultStore, defaultErr = New(cfg)
	})

	return defaultErr
}

// New creates a Store backed by the driver named in cfg
func New(cfg *Config, opts ...StoreOption) (*Store, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fs, err := CreateDriver(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	return NewStore(fs, cfg, opts...)
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.Driver == "" {
		return errors.New("driver is required")
	}

	switch cfg.Driver {
	case "memory":
	case "local":
		if cfg.LocalBasePath == "" {
			return errors.New("local base path is required for local driver")
		}
	case "s3":
		if cfg.S3Bucket == "" {
			return errors.New("S3 bucket is required for S3 driver")
		}
		// Access keys can be provided via IAM roles, so not always required
	default:
		return fmt.Errorf("unknown driver: %s", cfg.Driver)
	}

	if cfg.AllowedExtensions == "" {
		return errors.New("at least one allowed extension is required")
	}

	return nil
}

// Default returns the global Store, initializing it from the environment
// if needed
func Default() (*Store, error) {
	if defaultStore == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultStore, nil
}

// NewFromEnv creates a Store from environment variables
func NewFromEnv(opts ...StoreOption) (*Store, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Reset clears the global instance (for testing)
func Reset() {
	defaultStore = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}
