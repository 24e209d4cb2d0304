package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"CreditCycle/internal/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Simulation struct {
		Periods int    `yaml:"periods"`
		Seed    uint64 `yaml:"seed"`
		Workers int    `yaml:"workers"`
		// Strict turns a degenerate firm into a hard error instead of pricing
		// it out of production.
		Strict bool `yaml:"strict"`
	} `yaml:"simulation"`
	Macro struct {
		Wage           float64 `yaml:"wage"`
		TaxRate        float64 `yaml:"tax_rate"`
		DepositRate    float64 `yaml:"deposit_rate"`
		DebtRate       float64 `yaml:"debt_rate"`
		RepaymentShare float64 `yaml:"repayment_share"`
		MachineSize    float64 `yaml:"machine_size"`
		SupplierPrice  float64 `yaml:"supplier_price"`
		LoanToValue    float64 `yaml:"loan_to_value"`
		Depreciation   float64 `yaml:"depreciation"`
	} `yaml:"macro"`
	Firms struct {
		Count                 int     `yaml:"count"`
		LiquidAsset           float64 `yaml:"liquid_asset"`
		Debt                  float64 `yaml:"debt"`
		Capital               float64 `yaml:"capital"`
		Productivity          float64 `yaml:"productivity"`
		Inventories           float64 `yaml:"inventories"`
		PastSales             float64 `yaml:"past_sales"`
		GrossOperatingSurplus float64 `yaml:"gross_operating_surplus"`
	} `yaml:"firms"`
	Planning struct {
		InventoryShare   float64 `yaml:"inventory_share"`
		Markup           float64 `yaml:"markup"`
		OutputPerCapital float64 `yaml:"output_per_capital"`
	} `yaml:"planning"`
	Market struct {
		Mean   float64 `yaml:"mean"`
		StdDev float64 `yaml:"std_dev"`
		Window int     `yaml:"window"`
	} `yaml:"market"`
	Bank struct {
		Equity       float64 `yaml:"equity"`
		CapitalRatio float64 `yaml:"capital_ratio"`
		FixedSupply  float64 `yaml:"fixed_supply"`
	} `yaml:"bank"`
	Schedule struct {
		// StepCron paces one period per tick. Empty runs periods back to back.
		StepCron string `yaml:"step_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Checkpoint struct {
		Path string `yaml:"path"`
	} `yaml:"checkpoint"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CHECKPOINT_PATH"); v != "" {
		cfg.Checkpoint.Path = v
	}
	if v := os.Getenv("CRON_STEP"); v != "" {
		cfg.Schedule.StepCron = v
	}
	if v := os.Getenv("SIM_PERIODS"); v != "" {
		var periods int
		if _, err := fmt.Sscanf(v, "%d", &periods); err == nil {
			cfg.Simulation.Periods = periods
		}
	}
	if v := os.Getenv("SIM_WORKERS"); v != "" {
		var workers int
		if _, err := fmt.Sscanf(v, "%d", &workers); err == nil {
			cfg.Simulation.Workers = workers
		}
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		var seed uint64
		if _, err := fmt.Sscanf(v, "%d", &seed); err == nil {
			cfg.Simulation.Seed = seed
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Simulation.Periods == 0 {
		c.Simulation.Periods = 100
	}
	if c.Simulation.Seed == 0 {
		c.Simulation.Seed = 1
	}
	if c.Simulation.Workers == 0 {
		c.Simulation.Workers = 4
	}
	if c.Macro.Wage == 0 {
		c.Macro.Wage = 1
	}
	if c.Macro.TaxRate == 0 {
		c.Macro.TaxRate = 0.1
	}
	if c.Macro.DepositRate == 0 {
		c.Macro.DepositRate = 0.001
	}
	if c.Macro.DebtRate == 0 {
		c.Macro.DebtRate = 0.01
	}
	if c.Macro.RepaymentShare == 0 {
		c.Macro.RepaymentShare = 0.05
	}
	if c.Macro.MachineSize == 0 {
		c.Macro.MachineSize = 40
	}
	if c.Macro.SupplierPrice == 0 {
		c.Macro.SupplierPrice = 40
	}
	if c.Macro.LoanToValue == 0 {
		c.Macro.LoanToValue = 2
	}
	if c.Macro.Depreciation == 0 {
		c.Macro.Depreciation = 0.05
	}
	if c.Firms.Count == 0 {
		c.Firms.Count = 200
	}
	if c.Firms.LiquidAsset == 0 {
		c.Firms.LiquidAsset = 1000
	}
	if c.Firms.Capital == 0 {
		c.Firms.Capital = 800
	}
	if c.Firms.Productivity == 0 {
		c.Firms.Productivity = 1
	}
	if c.Firms.GrossOperatingSurplus == 0 {
		c.Firms.GrossOperatingSurplus = 100
	}
	if c.Planning.Markup == 0 {
		c.Planning.Markup = 0.2
	}
	if c.Planning.InventoryShare == 0 {
		c.Planning.InventoryShare = 0.1
	}
	if c.Planning.OutputPerCapital == 0 {
		c.Planning.OutputPerCapital = 1
	}
	if c.Market.Mean == 0 {
		c.Market.Mean = 500
	}
	if c.Market.StdDev == 0 {
		c.Market.StdDev = 50
	}
	if c.Market.Window == 0 {
		c.Market.Window = 4
	}
	if c.Bank.Equity == 0 {
		c.Bank.Equity = 50000
	}
	if c.Bank.CapitalRatio == 0 && c.Bank.FixedSupply == 0 {
		c.Bank.CapitalRatio = 0.08
	}
	if c.Checkpoint.Path == "" {
		c.Checkpoint.Path = "data/checkpoint.msgpack"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// MacroVars returns the macro section as the model's per-period variables.
func (c *Config) MacroVars() model.Macro {
	return model.Macro{
		Wage:           c.Macro.Wage,
		TaxRate:        c.Macro.TaxRate,
		DepositRate:    c.Macro.DepositRate,
		DebtRate:       c.Macro.DebtRate,
		RepaymentShare: c.Macro.RepaymentShare,
		MachineSize:    c.Macro.MachineSize,
		SupplierPrice:  c.Macro.SupplierPrice,
		LoanToValue:    c.Macro.LoanToValue,
		Depreciation:   c.Macro.Depreciation,
	}
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if c.Simulation.Periods < 0 {
		return fmt.Errorf("simulation.periods must not be negative")
	}
	if c.Simulation.Workers < 1 {
		return fmt.Errorf("simulation.workers must be at least 1")
	}
	if c.Macro.Wage <= 0 {
		return fmt.Errorf("macro.wage must be positive")
	}
	if c.Macro.TaxRate < 0 || c.Macro.TaxRate >= 1 {
		return fmt.Errorf("macro.tax_rate must be in [0, 1)")
	}
	if c.Macro.RepaymentShare < 0 || c.Macro.RepaymentShare > 1 {
		return fmt.Errorf("macro.repayment_share must be in [0, 1]")
	}
	if c.Macro.DepositRate < 0 || c.Macro.DebtRate < 0 {
		return fmt.Errorf("macro interest rates must not be negative")
	}
	if c.Macro.MachineSize <= 0 {
		return fmt.Errorf("macro.machine_size must be positive")
	}
	if c.Macro.SupplierPrice <= 0 {
		return fmt.Errorf("macro.supplier_price must be positive")
	}
	if c.Macro.Depreciation < 0 || c.Macro.Depreciation > 1 {
		return fmt.Errorf("macro.depreciation must be in [0, 1]")
	}
	if c.Firms.Count <= 0 {
		return fmt.Errorf("firms.count must be positive")
	}
	if c.Firms.Productivity <= 0 {
		return fmt.Errorf("firms.productivity must be positive")
	}
	if c.Firms.LiquidAsset < 0 {
		return fmt.Errorf("firms.liquid_asset must not be negative")
	}
	if c.Market.StdDev < 0 {
		return fmt.Errorf("market.std_dev must not be negative")
	}
	if c.Bank.CapitalRatio < 0 || c.Bank.FixedSupply < 0 {
		return fmt.Errorf("bank.capital_ratio and bank.fixed_supply must not be negative")
	}
	return nil
}
