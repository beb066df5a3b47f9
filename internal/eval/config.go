package eval

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/defaults.yaml
var defaultsYAML embed.FS

// Config holds the commercial assumptions the engine is parameterized with.
// All of these used to be module-level constants in earlier iterations; they
// are injectable so thresholds can change without touching the formulas.
type Config struct {
	// Fees charged on every sale.
	MarketplaceFeePct float64 `yaml:"marketplace_fee_pct"`
	AdsPct            float64 `yaml:"ads_pct"`

	// Per-unit packaging/loss/handling cost in BRL.
	PerUnitLocalCostBRL float64 `yaml:"per_unit_local_cost_brl"`

	// Customs value ceiling (USD) for the simplified import regime.
	MaxCustomsValueUSD float64 `yaml:"max_customs_value_usd"`

	// Minimum acceptable margin in the conservative scenario.
	MinConservativeMarginPct float64 `yaml:"min_conservative_margin_pct"`

	// Seeds used when a product has no prior simulation to anchor on.
	DefaultQuantity          int     `yaml:"default_quantity"`
	DefaultExchangeRate      float64 `yaml:"default_exchange_rate"`
	DefaultFreightTotalUSD   float64 `yaml:"default_freight_total_usd"`
	DefaultInsuranceTotalUSD float64 `yaml:"default_insurance_total_usd"`
}

// DefaultConfig returns the documented defaults. LoadConfig starts from these
// so a partial YAML override never zeroes a threshold by accident.
func DefaultConfig() Config {
	return Config{
		MarketplaceFeePct:        0.16,
		AdsPct:                   0.05,
		PerUnitLocalCostBRL:      3.0,
		MaxCustomsValueUSD:       3000.0,
		MinConservativeMarginPct: 35.0,
		DefaultQuantity:          200,
		DefaultExchangeRate:      5.2,
		DefaultFreightTotalUSD:   80.0,
		DefaultInsuranceTotalUSD: 10.0,
	}
}

// LoadConfig reads the embedded defaults.yaml and returns a Config.
// The path parameter points to an optional filesystem override for local
// development; environment variables inside the YAML (e.g. ${MAX_CUSTOMS_USD})
// are expanded before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := defaultsYAML.ReadFile("config/defaults.yaml")
	if err != nil {
		return Config{}, fmt.Errorf("embedded config unavailable: %w", err)
	}

	if path != "" {
		if override, readErr := os.ReadFile(path); readErr == nil {
			data = override
		}
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing engine config: %w", err)
	}

	if cfg.DefaultQuantity <= 0 {
		cfg.DefaultQuantity = DefaultConfig().DefaultQuantity
	}
	if cfg.DefaultExchangeRate <= 0 {
		cfg.DefaultExchangeRate = DefaultConfig().DefaultExchangeRate
	}

	return cfg, nil
}
