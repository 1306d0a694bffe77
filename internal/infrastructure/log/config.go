package log

import (
	"os"
	"strconv"
	"strings"
)

// 日志相关环境变量
const (
	EnvLevel     = "LOG_LEVEL"
	EnvFormat    = "LOG_FORMAT"
	EnvOutput    = "LOG_OUTPUT"
	EnvAddSource = "LOG_ADD_SOURCE"
	// EnvMode 为 development 时固定使用 debug 级别、console 格式并记录源码位置
	EnvMode = "ENV"
)

// Config 日志配置
//
// 优先级：环境变量 > 配置文件（Override）> 默认值，开发模式下后两者不生效。
type Config struct {
	Level     string // debug / info / warn / error
	Format    string // console / json / text
	Output    string // stdout / stderr / file:<path>
	AddSource bool
}

// NewConfigFromEnv 从环境变量创建配置
func NewConfigFromEnv() *Config {
	cfg := &Config{
		Level:     getEnvWithDefault(EnvLevel, "info"),
		Format:    getEnvWithDefault(EnvFormat, "console"),
		Output:    getEnvWithDefault(EnvOutput, "stdout"),
		AddSource: getEnvBool(EnvAddSource, false),
	}
	if developmentMode() {
		cfg.Level = "debug"
		cfg.Format = "console"
		cfg.AddSource = true
	}
	return cfg
}

// Override 用配置文件中的 log 段覆盖，已由环境变量指定的项保持不变
func (c *Config) Override(level, format string) *Config {
	if developmentMode() {
		return c
	}
	c.Level = pick(c.Level, level, EnvLevel)
	c.Format = pick(c.Format, format, EnvFormat)
	return c
}

// pick 文件值非空且环境变量未设置时采用文件值
func pick(current, fromFile, envKey string) string {
	if fromFile == "" || os.Getenv(envKey) != "" {
		return current
	}
	return fromFile
}

func developmentMode() bool {
	return strings.EqualFold(os.Getenv(EnvMode), "development")
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 解析失败时返回默认值
func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
