package config

import (
	"errors"
	"fmt"
	"os"

	"tourbill/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig             `yaml:"app"`
	Company    CompanyConfig         `yaml:"company"`
	Database   DatabaseConfig        `yaml:"database"`
	Redis      RedisConfig           `yaml:"redis"`
	Monitoring MonitoringConfig      `yaml:"monitoring"`
	Logging    LoggingConfig         `yaml:"logging"`
	API        APIConfig             `yaml:"api"`
	Pricing    PricingConfig         `yaml:"pricing"`
	Exports    ExportConfig          `yaml:"exports"`
	Google     GoogleConfig          `yaml:"google"`
	Telegram   TelegramConfig        `yaml:"telegram"`
	Tiers      []models.DiscountTier `yaml:"discount_tiers"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// CompanyConfig is the issuer identity printed on every invoice.
type CompanyConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	LogoURL string `yaml:"logo_url"`
	// ReplyComposerURL is the external navigation target the reply flow
	// redirects to, parameterized with booking_id and status.
	ReplyComposerURL string `yaml:"reply_composer_url"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// PricingConfig carries the lookup tables the pricing and rendering
// layers would otherwise hard-code. Injected so tests can supply their
// own tables deterministically.
type PricingConfig struct {
	CurrencySymbols       map[string]string `yaml:"currency_symbols"`
	DefaultCurrencySymbol string            `yaml:"default_currency_symbol"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	CredentialsFile       string `yaml:"credentials_file"`
	InvoicesSpreadsheetID string `yaml:"invoices_spreadsheet_id"`
}

type TelegramConfig struct {
	Enabled      bool    `yaml:"enabled"`
	BotToken     string  `yaml:"bot_token"`
	ManagerChats []int64 `yaml:"manager_chats"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; missing file is not an error.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before parsing.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Company.Name == "" {
		return errors.New("company name is required")
	}

	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram bot token is required when telegram is enabled")
	}

	return ValidateTiers(c.Tiers)
}

// ValidateTiers checks range and percent sanity. Overlapping ranges are
// deliberately permitted: resolution order is the authoring order of
// the list, so overlaps are a configuration choice, not an error.
func ValidateTiers(tiers []models.DiscountTier) error {
	for i, tier := range tiers {
		if tier.MinTravelers < 1 {
			return fmt.Errorf("tier %d: min_travelers must be at least 1", i)
		}
		if tier.MaxTravelers < tier.MinTravelers {
			return fmt.Errorf("tier %d: max_travelers %d is below min_travelers %d",
				i, tier.MaxTravelers, tier.MinTravelers)
		}
		if tier.Percent < 0 || tier.Percent > 100 {
			return fmt.Errorf("tier %d: percent %.2f is outside [0,100]", i, tier.Percent)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = models.RateLimitRPS
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = models.RateLimitBurst
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if len(c.Pricing.CurrencySymbols) == 0 {
		c.Pricing.CurrencySymbols = map[string]string{
			"USD": "$",
			"EUR": "€",
			"GBP": "£",
		}
	}
	if c.Pricing.DefaultCurrencySymbol == "" {
		c.Pricing.DefaultCurrencySymbol = "$"
	}
}
