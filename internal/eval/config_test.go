package eval

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_EmbeddedDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("embedded defaults should match DefaultConfig, got %+v", cfg)
	}
}

func TestLoadConfig_PartialOverrideKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.yaml")
	if err := os.WriteFile(path, []byte("max_customs_value_usd: 5000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxCustomsValueUSD != 5000 {
		t.Fatalf("override ignored: got %v", cfg.MaxCustomsValueUSD)
	}
	if cfg.MarketplaceFeePct != 0.16 || cfg.DefaultQuantity != 200 {
		t.Fatalf("unset fields should keep defaults, got %+v", cfg)
	}
}

func TestLoadConfig_GuardsDegenerateSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.yaml")
	if err := os.WriteFile(path, []byte("default_quantity: -1\ndefault_exchange_rate: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultQuantity != 200 || cfg.DefaultExchangeRate != 5.2 {
		t.Fatalf("degenerate seeds should reset to defaults, got qty=%d fx=%v", cfg.DefaultQuantity, cfg.DefaultExchangeRate)
	}
}

func TestLoadConfig_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_MAX_CUSTOMS", "4200")

	path := filepath.Join(t.TempDir(), "eval.yaml")
	if err := os.WriteFile(path, []byte("max_customs_value_usd: ${TEST_MAX_CUSTOMS}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxCustomsValueUSD != 4200 {
		t.Fatalf("env expansion failed, got %v", cfg.MaxCustomsValueUSD)
	}
}
