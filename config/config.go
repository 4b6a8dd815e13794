package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Output    OutputConfig    `yaml:"output"`
	Storage   StorageConfig   `yaml:"storage"`
	Minio     MinioConfig     `yaml:"minio"`
	Converter ConverterConfig `yaml:"converter"`
	Auth      AuthConfig      `yaml:"auth"`
	Users     []User          `yaml:"users"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
}

type ServerConfig struct {
	Port            int `yaml:"port"`
	RateLimit       int `yaml:"rate_limit"`        // requests per window per client
	RateLimitWindow int `yaml:"rate_limit_window"` // seconds
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`   // largest accepted estimate
}

// OutputConfig says where generated artifacts go and how they are linked.
type OutputConfig struct {
	RootURL   string `yaml:"root_url"`
	OutputDir string `yaml:"output_dir"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // local, minio
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

// ConverterConfig points at an HTML to PDF conversion service. An empty
// APIURL selects the built-in PDF writer.
type ConverterConfig struct {
	APIURL         string `yaml:"api_url"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

// Enabled reports whether API routes require a bearer token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Tenant   string `yaml:"tenant"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	MaxReports int `yaml:"max_reports"`
}

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv lets deployments override output locations without editing YAML.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("ROOT_URL"); ok && v != "" {
		c.Output.RootURL = v
	}
	if v, ok := os.LookupEnv("OUTPUT_DIR"); ok && v != "" {
		c.Output.OutputDir = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 100
	}
	if c.Server.RateLimitWindow == 0 {
		c.Server.RateLimitWindow = 60
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 10 << 20
	}
	if c.Output.RootURL == "" {
		c.Output.RootURL = "http://localhost"
	}
	c.Output.RootURL = strings.TrimRight(c.Output.RootURL, "/")
	if c.Output.OutputDir == "" {
		c.Output.OutputDir = "./static"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageLocal
	}
	if c.Minio.ExpireDays == 0 {
		c.Minio.ExpireDays = 7
	}
	if c.Converter.TimeoutSeconds == 0 {
		c.Converter.TimeoutSeconds = 60
	}
	if c.Auth.TokenExpireHours == 0 {
		c.Auth.TokenExpireHours = 24
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Store.MaxReports == 0 {
		c.Store.MaxReports = 100
	}
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
