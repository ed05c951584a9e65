package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GustavoCaso/gastos/internal/logger"
)

var envKeys = []string{
	"GASTOS_LEDGER",
	"GASTOS_STORAGE",
	"GASTOS_CATEGORIES",
	"GASTOS_CURRENCY",
	"GASTOS_LLM_PROVIDER",
	"GASTOS_MODEL",
	"GASTOS_LLM_BASE_URL",
	"GASTOS_LOG_LEVEL",
	"GASTOS_LOG_FORMAT",
	"GASTOS_LOG_OUTPUT",
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	return path
}

func TestParseTOML(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	path := writeConfig(t, "gastos.toml", `
ledger = "data/gastos.csv"
storage = "sqlite"
categories = "data/categorias.json"
currency = "COP"

[llm]
provider = "anthropic"
model = "claude-test"

[logger]
level = "debug"
format = "json"
output = "discard"
`)

	conf, err := Parse(path)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if conf.Ledger != "data/gastos.csv" {
		t.Errorf("Expected ledger 'data/gastos.csv', got '%s'", conf.Ledger)
	}

	if conf.Storage != StorageSQLite {
		t.Errorf("Expected storage 'sqlite', got '%s'", conf.Storage)
	}

	if conf.CategoriesFile != "data/categorias.json" {
		t.Errorf("Expected categories file 'data/categorias.json', got '%s'", conf.CategoriesFile)
	}

	if conf.Currency != "COP" {
		t.Errorf("Expected currency 'COP', got '%s'", conf.Currency)
	}

	if conf.LLM.Provider != ProviderAnthropic {
		t.Errorf("Expected provider 'anthropic', got '%s'", conf.LLM.Provider)
	}

	if conf.LLM.Model != "claude-test" {
		t.Errorf("Expected model 'claude-test', got '%s'", conf.LLM.Model)
	}

	if conf.LLM.APIKey != "sk-ant-test" {
		t.Errorf("Expected API key from ANTHROPIC_API_KEY, got '%s'", conf.LLM.APIKey)
	}

	if conf.Logger.Level != logger.LevelDebug {
		t.Errorf("Expected logger level 'debug', got '%s'", conf.Logger.Level)
	}

	if conf.Logger.Format != logger.FormatJSON {
		t.Errorf("Expected logger format 'json', got '%s'", conf.Logger.Format)
	}

	if conf.Logger.Output != "discard" {
		t.Errorf("Expected logger output 'discard', got '%s'", conf.Logger.Output)
	}
}

func TestParseYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := writeConfig(t, "gastos.yaml", `
ledger: gastos-yaml.csv
llm:
  provider: openai
  base_url: http://localhost:8080/v1
logger:
  output: discard
`)

	conf, err := Parse(path)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if conf.Ledger != "gastos-yaml.csv" {
		t.Errorf("Expected ledger 'gastos-yaml.csv', got '%s'", conf.Ledger)
	}

	if conf.LLM.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("Expected base url 'http://localhost:8080/v1', got '%s'", conf.LLM.BaseURL)
	}

	if conf.LLM.APIKey != "sk-test" {
		t.Errorf("Expected API key from OPENAI_API_KEY, got '%s'", conf.LLM.APIKey)
	}

	if conf.Storage != StorageCSV {
		t.Errorf("Expected default storage 'csv', got '%s'", conf.Storage)
	}
}

func TestParseENV(t *testing.T) {
	clearEnv(t)
	t.Setenv("GASTOS_LEDGER", "env.csv")
	t.Setenv("GASTOS_STORAGE", "sqlite")
	t.Setenv("GASTOS_CATEGORIES", "env.json")
	t.Setenv("GASTOS_MODEL", "gpt-env")
	t.Setenv("GASTOS_LOG_LEVEL", "warn")
	t.Setenv("GASTOS_LOG_FORMAT", "json")
	t.Setenv("GASTOS_LOG_OUTPUT", "discard")

	conf, err := Parse("noexiting.toml")
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if conf.Ledger != "env.csv" {
		t.Errorf("Expected ledger 'env.csv', got '%s'", conf.Ledger)
	}

	if conf.Storage != StorageSQLite {
		t.Errorf("Expected storage 'sqlite', got '%s'", conf.Storage)
	}

	if conf.CategoriesFile != "env.json" {
		t.Errorf("Expected categories 'env.json', got '%s'", conf.CategoriesFile)
	}

	if conf.LLM.Model != "gpt-env" {
		t.Errorf("Expected model 'gpt-env', got '%s'", conf.LLM.Model)
	}

	if conf.Logger.Level != logger.LevelWarn {
		t.Errorf("Expected logger level 'warn', got '%s'", conf.Logger.Level)
	}

	if conf.Logger.Format != logger.FormatJSON {
		t.Errorf("Expected logger format 'json', got '%s'", conf.Logger.Format)
	}
}

func TestParseEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GASTOS_LEDGER", "from-env.csv")

	path := writeConfig(t, "gastos.toml", `ledger = "from-file.csv"`)

	conf, err := Parse(path)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if conf.Ledger != "from-env.csv" {
		t.Errorf("Expected ledger 'from-env.csv', got '%s'", conf.Ledger)
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)

	conf, err := Parse("")
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if conf.Ledger != defaultLedger {
		t.Errorf("Expected ledger '%s', got '%s'", defaultLedger, conf.Ledger)
	}

	if conf.CategoriesFile != defaultCategories {
		t.Errorf("Expected categories '%s', got '%s'", defaultCategories, conf.CategoriesFile)
	}

	if conf.Currency != defaultCurrency {
		t.Errorf("Expected currency '%s', got '%s'", defaultCurrency, conf.Currency)
	}

	if conf.LLM.Provider != ProviderOpenAI {
		t.Errorf("Expected provider 'openai', got '%s'", conf.LLM.Provider)
	}

	if conf.LLM.APIKey != "" {
		t.Errorf("Expected empty API key, got '%s'", conf.LLM.APIKey)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "unsupported extension", file: "gastos.ini", content: "ledger=x"},
		{name: "invalid toml", file: "gastos.toml", content: "ledger = "},
		{name: "unsupported storage", file: "gastos.toml", content: `storage = "postgres"`},
		{name: "unsupported provider", file: "gastos.yaml", content: "llm:\n  provider: gemini\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := writeConfig(t, tt.file, tt.content)

			if _, err := Parse(path); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, ".env", "OPENAI_API_KEY=sk-from-dotenv\n")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("Failed to load .env: %v", err)
	}

	conf, err := Parse("")
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if conf.LLM.APIKey != "sk-from-dotenv" {
		t.Errorf("Expected API key 'sk-from-dotenv', got '%s'", conf.LLM.APIKey)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("Expected no error for missing .env, got %v", err)
	}
}
