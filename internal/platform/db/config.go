package db

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "config/config.yaml"

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Path     string `yaml:"path"` // sqlite3 のみ
	Migrate  bool   `yaml:"migrate"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LibraryConfig struct {
	DefaultLoanDays int `yaml:"default_loan_days"`
	MaxLoanDays     int `yaml:"max_loan_days"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Server      ServerConfig   `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	Certificate Certs          `yaml:"certificate"`
	Library     LibraryConfig  `yaml:"library"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig は設定ファイルなしで使う既定値（ローカル実行・テスト用）。
func DefaultConfig() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8443"
	}
	if c.DB.Driver == "" {
		c.DB.Driver = string(MySQL)
	}
	if c.Library.DefaultLoanDays == 0 {
		c.Library.DefaultLoanDays = 14
	}
	if c.Library.MaxLoanDays == 0 {
		c.Library.MaxLoanDays = 30
	}
}

func (c *Config) Validate() error {
	if c.Mode != "dev" && c.Mode != "release" {
		return fmt.Errorf("mode must be dev or release, got %q", c.Mode)
	}
	if _, err := ParseDialect(c.DB.Driver); err != nil {
		return err
	}
	if c.Library.DefaultLoanDays < 0 || c.Library.MaxLoanDays < 0 {
		return fmt.Errorf("library loan days must be >= 0")
	}
	if c.Library.DefaultLoanDays > c.Library.MaxLoanDays {
		return fmt.Errorf("default_loan_days (%d) exceeds max_loan_days (%d)",
			c.Library.DefaultLoanDays, c.Library.MaxLoanDays)
	}
	return nil
}

// TLSEnabled は証明書と鍵が両方指定されているか。
func (c *Config) TLSEnabled() bool {
	return c.Certificate.Cert != "" && c.Certificate.Key != ""
}
