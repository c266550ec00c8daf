// Package config holds the tunable settings of a session, loadable from a
// TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/asaskevich/govalidator"
)

func init() {
	govalidator.SetFieldsRequiredByDefault(true)
}

// Config is the root of the configuration.
type Config struct {
	// FontFamily and FontSize are the defaults for free-text drafts that do
	// not set their own.
	FontFamily string  `toml:"font_family" valid:"optional"`
	FontSize   float64 `toml:"font_size" valid:"range(4|144),optional"`

	// LineHeight is the leading factor applied to the font size.
	LineHeight float64 `toml:"line_height" valid:"range(1|3),optional"`

	// SignReason and SignLocation prefill the signature metadata.
	SignReason   string `toml:"sign_reason" valid:"optional"`
	SignLocation string `toml:"sign_location" valid:"optional"`

	// CertValidYears is the lifetime of self-created certificates.
	CertValidYears int `toml:"cert_valid_years" valid:"range(1|20),optional"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		FontFamily:     "Helvetica",
		FontSize:       12,
		LineHeight:     1.2,
		CertValidYears: 1,
	}
}

// Validate checks all fields against their constraints.
func (c Config) Validate() error {
	if _, err := govalidator.ValidateStruct(c); err != nil {
		return fmt.Errorf("config is not valid: %w", err)
	}
	return nil
}

// Load reads a TOML config file on top of the defaults.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config file is missing: %w", err)
	}

	c := Default()
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
