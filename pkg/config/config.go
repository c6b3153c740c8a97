package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"FinBoard/pkg/util"

	"gopkg.in/yaml.v3"
)

// FairValueConfig holds the per-asset log-regression curve coefficients.
type FairValueConfig struct {
	BasePrice   float64 `yaml:"base_price"`
	BaseCoeff   float64 `yaml:"base_coeff"`
	GrowthCoeff float64 `yaml:"growth_coeff"`
	MainMult    float64 `yaml:"main_mult"`
	UpperMult   float64 `yaml:"upper_mult"`
	LowerMult   float64 `yaml:"lower_mult"`
	Origin      string  `yaml:"origin"` // YYYY-MM-DD
}

// AssetConfig describes one tracked symbol and its analytics parameters.
type AssetConfig struct {
	Asset          string          `yaml:"asset"` // crypto, equity, metal, index
	Symbol         string          `yaml:"symbol"`
	Benchmark      string          `yaml:"benchmark"`
	BenchmarkAsset string          `yaml:"benchmark_asset"`
	Drawdown       float64         `yaml:"drawdown"`
	Anchor         string          `yaml:"anchor"` // YYYY-MM-DD
	FairValue      FairValueConfig `yaml:"fair_value"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Binance struct {
		APIBase        string        `yaml:"api_base"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"binance"`
	MarketData struct {
		StockAnalysisBase string            `yaml:"stockanalysis_base"`
		InvestingBase     string            `yaml:"investing_base"`
		Instruments       map[string]string `yaml:"instruments"` // symbol -> investing.com id
		Timeout           time.Duration     `yaml:"timeout"`
		RefreshInterval   time.Duration     `yaml:"refresh_interval"`
	} `yaml:"market_data"`
	Queue struct {
		Workers    int           `yaml:"workers"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"queue"`
	Analytics struct {
		ConfirmWindow int           `yaml:"confirm_window"`
		TrendWindow   int           `yaml:"trend_window"`
		MinGapFrac    float64       `yaml:"min_gap_frac"`
		SValWeight    float64       `yaml:"s_val_weight"`
		SRelWeight    float64       `yaml:"s_rel_weight"`
		LowThreshold  float64       `yaml:"low_threshold"`
		HighThreshold float64       `yaml:"high_threshold"`
		Assets        []AssetConfig `yaml:"assets"`
		CacheTTL      struct {
			Cycles time.Duration `yaml:"cycles"`
			Risk   time.Duration `yaml:"risk"`
			Latest time.Duration `yaml:"latest"`
		} `yaml:"cache_ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"analytics"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Binance.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Analytics.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		c.Analytics.Redis.DB = util.ParseIntDefault(v, c.Analytics.Redis.DB)
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if len(c.Binance.Symbols) == 0 {
		return fmt.Errorf("binance.symbols cannot be empty")
	}
	if len(c.Analytics.Assets) == 0 {
		return fmt.Errorf("analytics.assets cannot be empty")
	}
	for i, a := range c.Analytics.Assets {
		if a.Symbol == "" {
			return fmt.Errorf("analytics.assets[%d].symbol is required", i)
		}
		if a.Drawdown < 0 || a.Drawdown >= 1 {
			return fmt.Errorf("analytics.assets[%d].drawdown must be in [0,1)", i)
		}
	}
	return nil
}

// Asset looks up the config entry for an (asset, symbol) pair.
func (c *Config) Asset(asset, symbol string) (*AssetConfig, bool) {
	symbol = strings.ToUpper(symbol)
	for i := range c.Analytics.Assets {
		a := &c.Analytics.Assets[i]
		if strings.EqualFold(a.Asset, asset) && strings.ToUpper(a.Symbol) == symbol {
			return a, true
		}
	}
	return nil, false
}
