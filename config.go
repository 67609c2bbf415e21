package valkit

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Accepted credit card issuers, comma-separated (empty means all)
	CreditCardTypes string `env:"VALKIT_CREDITCARD_TYPES"`

	// Accepted image MIME types, comma-separated (empty means the built-in list)
	ImageMimeTypes string `env:"VALKIT_IMAGE_MIME_TYPES"`

	// Require image files to carry a genuine image header
	ImageHeaderCheck bool `env:"VALKIT_IMAGE_HEADER_CHECK,default:false"`

	// Path to a YAML signature database used for MIME sniffing
	MagicFile string `env:"VALKIT_MAGIC_FILE"`

	// Message rendering
	MessageLength int  `env:"VALKIT_MESSAGE_LENGTH,default:-1"`
	ValueObscured bool `env:"VALKIT_VALUE_OBSCURED,default:false"`

	// Observability
	LogLevel       string `env:"VALKIT_LOG_LEVEL,default:info"`
	MetricsEnabled bool   `env:"VALKIT_METRICS_ENABLED,default:true"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Builder loads Config with a custom environment prefix
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Config loads the configuration using the builder's prefix
func (b *Builder) Config() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply installs the logging and metrics settings of cfg.
func (c *Config) Apply() error {
	if err := SetLogLevel(c.LogLevel); err != nil {
		return err
	}
	SetMetricsEnabled(c.MetricsEnabled)
	return nil
}

// CreditCardOptions returns the option record for a credit card validator.
func (c *Config) CreditCardOptions() Options {
	opts := c.messengerOptions()
	if types := SplitList(c.CreditCardTypes); len(types) > 0 {
		opts["type"] = types
	}
	return opts
}

// ImageOptions returns the option record for an image file validator.
func (c *Config) ImageOptions() Options {
	opts := c.messengerOptions()
	if types := SplitList(c.ImageMimeTypes); len(types) > 0 {
		opts["mimeType"] = types
	}
	opts["enableHeaderCheck"] = c.ImageHeaderCheck
	if c.MagicFile != "" {
		opts["magicFile"] = c.MagicFile
	}
	return opts
}

func (c *Config) messengerOptions() Options {
	return Options{
		OptionMessageLength: c.MessageLength,
		OptionValueObscured: c.ValueObscured,
	}
}
