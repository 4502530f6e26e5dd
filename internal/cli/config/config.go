// Package config 管理 azcalc 的本地配置文件 (~/.azcalc/config.json)。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/spf13/viper"
)

const (
	// DefaultServer 是未配置时的后端地址。
	DefaultServer = "http://localhost:8000"
	// DefaultCurrency 是价格展示的默认货币。
	DefaultCurrency = "USD"

	// envDirOverride 允许测试与脚本重定向配置目录。
	envDirOverride = "AZCALC_CONFIG_DIR"
	envPrefix      = "AZCALC"

	configFileName = "config.json"
	cartFileName   = "cart.json"
)

// Config 是 CLI 的持久化配置。
type Config struct {
	Server      string `json:"server" mapstructure:"server"`
	AccessToken string `json:"access_token" mapstructure:"access_token"`
	Username    string `json:"username" mapstructure:"username"`
	UserID      string `json:"user_id" mapstructure:"user_id"`
	Currency    string `json:"currency" mapstructure:"currency"`
	// UseRealAPI 为 false 时聊天走本地模拟流, 不访问后端。
	UseRealAPI bool `json:"use_real_api" mapstructure:"use_real_api"`
}

// Dir 返回配置目录, 环境变量 AZCALC_CONFIG_DIR 可重定向。
func Dir() (string, error) {
	if dir := os.Getenv(envDirOverride); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("获取用户主目录失败: %w", err)
	}
	return filepath.Join(home, ".azcalc"), nil
}

// Path 返回配置文件路径。
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// CartPath 返回清单持久化文件路径。
func CartPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cartFileName), nil
}

// Load 读取配置。文件缺失返回默认值, 环境变量 AZCALC_SERVER 等
// 可覆盖文件里的同名字段。
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("server", DefaultServer)
	v.SetDefault("currency", DefaultCurrency)
	v.SetDefault("use_real_api", false)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	return &cfg, nil
}

// Save 写出配置, 权限 0600, 令牌不能被同机其他用户读到。
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	data, err := sonic.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// IsAuthenticated 判断是否已登录。
func (c *Config) IsAuthenticated() bool {
	return c.AccessToken != ""
}
