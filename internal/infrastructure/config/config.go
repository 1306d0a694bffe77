package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix 环境变量前缀，例如 TODOKIT_SERVER_HTTP_PORT
	EnvPrefix = "TODOKIT"
	// DefaultConfigFile 数据目录下的默认配置文件名
	DefaultConfigFile = "config.yaml"
	// DefaultDBFile 默认数据库文件名
	DefaultDBFile = "todokit.db"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `mapstructure:"app" yaml:"app"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	CORS      CORSConfig      `mapstructure:"cors" yaml:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Discovery DiscoveryConfig `mapstructure:"discovery" yaml:"discovery"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`

	// File 实际加载的配置文件，空表示仅使用默认值和环境变量
	File string `mapstructure:"-" yaml:"-"`
}

// AppConfig 应用信息
type AppConfig struct {
	Name    string `mapstructure:"name" yaml:"name" validate:"required"`
	Version string `mapstructure:"version" yaml:"version" validate:"required"`
	Env     string `mapstructure:"env" yaml:"env" validate:"oneof=development production test"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort        string        `mapstructure:"http_port" yaml:"http_port" validate:"required,startswith=:"` // 固定端口，用于单例锁
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gte=0"` // 0 表示不限制，SSE 与 WebSocket 为长连接
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Driver 存储实现：sqlite 或 memory
	Driver string `mapstructure:"driver" yaml:"driver" validate:"oneof=sqlite memory"`
	// Path SQLite 文件路径，留空表示 <数据目录>/todokit.db
	Path string `mapstructure:"path" yaml:"path"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins" yaml:"allow_origins" validate:"min=1"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled" yaml:"enabled"`
	RPS     float64 `mapstructure:"rps" yaml:"rps" validate:"gt=0"`
	Burst   int     `mapstructure:"burst" yaml:"burst" validate:"gt=0"`
}

// DiscoveryConfig 局域网服务发现配置
type DiscoveryConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Instance string `mapstructure:"instance" yaml:"instance"`
	Service  string `mapstructure:"service" yaml:"service" validate:"required"`
}

// LogConfig 日志配置（环境变量 LOG_* 优先）
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=console json text"`
}

// NewConfig 创建配置（默认值）
func NewConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "todokit",
			Version: "1.0.0",
			Env:     "production",
		},
		Server: ServerConfig{
			HTTPPort:        ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "",
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			Enabled: false,
			RPS:     50,
			Burst:   100,
		},
		Discovery: DiscoveryConfig{
			Enabled: false,
			Service: "_todokit._tcp",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load 按 默认值 → 配置文件 → 环境变量 的顺序加载配置
//
// path 为空时尝试 <数据目录>/config.yaml，文件不存在不视为错误。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, NewConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DataPath(DefaultConfigFile)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case explicit:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			// 默认配置文件可选
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.File); err != nil {
		cfg.File = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults 把默认配置逐项注册到 viper，保证环境变量能覆盖每个键
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.version", d.App.Version)
	v.SetDefault("app.env", d.App.Env)

	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("cors.allow_origins", d.CORS.AllowOrigins)

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.rps", d.RateLimit.RPS)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)

	v.SetDefault("discovery.enabled", d.Discovery.Enabled)
	v.SetDefault("discovery.instance", d.Discovery.Instance)
	v.SetDefault("discovery.service", d.Discovery.Service)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

var validate = validator.New()

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DBPath 返回 SQLite 文件路径
func (c *Config) DBPath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return DataPath(DefaultDBFile)
}

// Dump 以 YAML 输出当前生效配置
func Dump(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewDiscoveryConfig 创建服务发现配置
func NewDiscoveryConfig(cfg *Config) *DiscoveryConfig {
	return &cfg.Discovery
}
