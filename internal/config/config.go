package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/GustavoCaso/gastos/internal/logger"
)

const (
	StorageCSV    = "csv"
	StorageSQLite = "sqlite"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type LLMConfig struct {
	Provider string `toml:"provider" yaml:"provider"`
	Model    string `toml:"model"    yaml:"model"`
	BaseURL  string `toml:"base_url" yaml:"base_url"`
	// APIKey only comes from the environment.
	APIKey string `toml:"-" yaml:"-"`
}

type Config struct {
	Ledger         string        `toml:"ledger"     yaml:"ledger"`
	Storage        string        `toml:"storage"    yaml:"storage"`
	CategoriesFile string        `toml:"categories" yaml:"categories"`
	Currency       string        `toml:"currency"   yaml:"currency"`
	LLM            LLMConfig     `toml:"llm"        yaml:"llm"`
	Logger         logger.Config `toml:"logger"     yaml:"logger"`
}

const (
	defaultLedger     = "gastos.csv"
	defaultCategories = "categorias.json"
	defaultCurrency   = "USD"
	defaultLogLevel   = logger.LevelInfo
	defaultLogFormat  = logger.FormatText
	defaultLogOutput  = "stderr"
)

// LoadDotEnv exports the variables of a .env file into the process
// environment, overriding values already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Overload(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// Parse reads the configuration file at path (TOML or YAML, picked by
// extension), applies environment overrides and fills in defaults. A missing
// file yields a configuration built from the environment alone.
func Parse(path string) (*Config, error) {
	conf := &Config{}

	if err := conf.parseFile(path); err != nil {
		return nil, err
	}

	conf.parseEnv()
	conf.setDefaults()

	if conf.Storage != StorageCSV && conf.Storage != StorageSQLite {
		return nil, fmt.Errorf("unsupported storage %q", conf.Storage)
	}

	if conf.LLM.Provider != ProviderOpenAI && conf.LLM.Provider != ProviderAnthropic {
		return nil, fmt.Errorf("unsupported llm provider %q", conf.LLM.Provider)
	}

	return conf, nil
}

func (c *Config) parseFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	if err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) parseEnv() {
	setFromEnv(&c.Ledger, "GASTOS_LEDGER")
	setFromEnv(&c.Storage, "GASTOS_STORAGE")
	setFromEnv(&c.CategoriesFile, "GASTOS_CATEGORIES")
	setFromEnv(&c.Currency, "GASTOS_CURRENCY")
	setFromEnv(&c.LLM.Provider, "GASTOS_LLM_PROVIDER")
	setFromEnv(&c.LLM.Model, "GASTOS_MODEL")
	setFromEnv(&c.LLM.BaseURL, "GASTOS_LLM_BASE_URL")

	if level := os.Getenv("GASTOS_LOG_LEVEL"); level != "" {
		c.Logger.Level = logger.Level(level)
	}

	if format := os.Getenv("GASTOS_LOG_FORMAT"); format != "" {
		c.Logger.Format = logger.Format(format)
	}

	setFromEnv(&c.Logger.Output, "GASTOS_LOG_OUTPUT")
}

func (c *Config) setDefaults() {
	if c.Ledger == "" {
		c.Ledger = defaultLedger
	}

	if c.Storage == "" {
		c.Storage = StorageCSV
	}

	if c.CategoriesFile == "" {
		c.CategoriesFile = defaultCategories
	}

	if c.Currency == "" {
		c.Currency = defaultCurrency
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}

	switch c.LLM.Provider {
	case ProviderOpenAI:
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if c.Logger.Level == "" {
		c.Logger.Level = defaultLogLevel
	}

	if c.Logger.Format == "" {
		c.Logger.Format = defaultLogFormat
	}

	if c.Logger.Output == "" {
		c.Logger.Output = defaultLogOutput
	}
}

func setFromEnv(field *string, key string) {
	if value := os.Getenv(key); value != "" {
		*field = value
	}
}
