package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AZCALC_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server != DefaultServer {
		t.Errorf("Server = %q, 期望 %q", cfg.Server, DefaultServer)
	}
	if cfg.Currency != DefaultCurrency {
		t.Errorf("Currency = %q, 期望 %q", cfg.Currency, DefaultCurrency)
	}
	if cfg.UseRealAPI {
		t.Error("默认应使用模拟流")
	}
	if cfg.IsAuthenticated() {
		t.Error("默认不应处于登录态")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("AZCALC_CONFIG_DIR", t.TempDir())

	cfg := &Config{
		Server:      "http://api.example.com",
		AccessToken: "token-123",
		Username:    "alice",
		Currency:    "CNY",
		UseRealAPI:  true,
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("配置文件缺失: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("配置文件权限 = %v, 期望 0600", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("配置 = %+v, 期望 %+v", loaded, cfg)
	}
	if !loaded.IsAuthenticated() {
		t.Error("保存令牌后应处于登录态")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("AZCALC_CONFIG_DIR", t.TempDir())
	t.Setenv("AZCALC_SERVER", "http://override:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server != "http://override:9000" {
		t.Errorf("环境变量未覆盖 Server: %q", cfg.Server)
	}
}
