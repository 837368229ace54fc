package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env              string        `mapstructure:"ENV"`
	Port             string        `mapstructure:"PORT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	BaseURL          string        `mapstructure:"BASE_URL"`
	SheetWebAppURL   string        `mapstructure:"SHEET_WEBAPP_URL"`
	TwilioAccountSID string        `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string        `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioCallerID   string        `mapstructure:"TWILIO_CALLER_ID"`
	ValidateSig      bool          `mapstructure:"TWILIO_VALIDATE_SIGNATURE"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	AdminKey         string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed      string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RingTimeout      time.Duration `mapstructure:"RING_TIMEOUT"`
	GatherTimeout    time.Duration `mapstructure:"GATHER_TIMEOUT"`
	DefaultLanguage  string        `mapstructure:"DEFAULT_LANGUAGE"`
	CompanyName      string        `mapstructure:"COMPANY_NAME"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	// Unmarshal only sees keys viper already knows, so env-only keys need a default too.
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BASE_URL", "")
	v.SetDefault("SHEET_WEBAPP_URL", "")
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_CALLER_ID", "")
	v.SetDefault("TWILIO_VALIDATE_SIGNATURE", false)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("RING_TIMEOUT", "30s")
	v.SetDefault("GATHER_TIMEOUT", "5s")
	v.SetDefault("DEFAULT_LANGUAGE", "EN")
	v.SetDefault("COMPANY_NAME", "Lodha Group")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.DefaultLanguage = strings.ToUpper(strings.TrimSpace(cfg.DefaultLanguage))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SheetWebAppURL) == "" {
		return fmt.Errorf("SHEET_WEBAPP_URL is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.RingTimeout < time.Second {
		return fmt.Errorf("RING_TIMEOUT must be at least 1s, got %s", c.RingTimeout)
	}
	if c.GatherTimeout < time.Second {
		return fmt.Errorf("GATHER_TIMEOUT must be at least 1s, got %s", c.GatherTimeout)
	}
	if c.ValidateSig && c.TwilioAuthToken == "" {
		return fmt.Errorf("TWILIO_VALIDATE_SIGNATURE needs TWILIO_AUTH_TOKEN")
	}
	return nil
}

// TwilioEnabled reports whether real provider credentials are configured.
func (c Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}
