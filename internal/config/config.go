// Package config loads application configuration from file and environment.
package config

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is constructed once
// at startup and passed explicitly to each pipeline stage.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Clean    CleanConfig    `yaml:"clean" mapstructure:"clean"`
	Features FeaturesConfig `yaml:"features" mapstructure:"features"`
	Train    TrainConfig    `yaml:"train" mapstructure:"train"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Fiscal   FiscalConfig   `yaml:"fiscal" mapstructure:"fiscal"`
	Listings ListingsConfig `yaml:"listings" mapstructure:"listings"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// PathsConfig resolves every file the pipeline reads or writes. Each stage
// owns its output paths exclusively for the duration of a run.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" mapstructure:"data_dir"`
	ModelsDir string `yaml:"models_dir" mapstructure:"models_dir"`
}

// RawDVFDir is where yearly geocoded DVF exports land.
func (p PathsConfig) RawDVFDir() string { return filepath.Join(p.DataDir, "dvf", "raw") }

// CleanedDVFDir holds the aggregated and filtered DVF CSVs.
func (p PathsConfig) CleanedDVFDir() string { return filepath.Join(p.DataDir, "dvf", "cleaned") }

// AnalysisDir holds the aggregation report CSVs.
func (p PathsConfig) AnalysisDir() string { return filepath.Join(p.DataDir, "dvf", "analysis") }

// FiscalDir holds the raw IRCOM workbooks and the cleaned export.
func (p PathsConfig) FiscalDir() string { return filepath.Join(p.DataDir, "fiscal") }

// ListingsDir holds the scraped listing CSVs.
func (p PathsConfig) ListingsDir() string { return filepath.Join(p.DataDir, "listings") }

func (p PathsConfig) AllTransactions() string {
	return filepath.Join(p.CleanedDVFDir(), "dvf_paris_all.csv")
}
func (p PathsConfig) ExploitableTransactions() string {
	return filepath.Join(p.CleanedDVFDir(), "dvf_paris_exploitable.csv")
}
func (p PathsConfig) InexploitableTransactions() string {
	return filepath.Join(p.CleanedDVFDir(), "dvf_paris_inexploitable.csv")
}
func (p PathsConfig) CleanTransactions() string {
	return filepath.Join(p.CleanedDVFDir(), "dvf_paris_clean.csv")
}
func (p PathsConfig) HighOutliers() string {
	return filepath.Join(p.CleanedDVFDir(), "dvf_paris_outliers_high.csv")
}
func (p PathsConfig) LowOutliers() string {
	return filepath.Join(p.CleanedDVFDir(), "dvf_paris_outliers_low.csv")
}
func (p PathsConfig) FiscalClean() string {
	return filepath.Join(p.FiscalDir(), "ircom_paris_clean.csv")
}
func (p PathsConfig) ListingsClean() string {
	return filepath.Join(p.ListingsDir(), "annonces_paris_final.csv")
}
func (p PathsConfig) TrainTable() string { return filepath.Join(p.ModelsDir, "ml_train.csv") }
func (p PathsConfig) TestTable() string  { return filepath.Join(p.ModelsDir, "ml_test.csv") }
func (p PathsConfig) Scaler() string     { return filepath.Join(p.ModelsDir, "scaler.json") }
func (p PathsConfig) Manifest() string   { return filepath.Join(p.ModelsDir, "manifest.yaml") }
func (p PathsConfig) PriceModel() string { return filepath.Join(p.ModelsDir, "model_price.json") }
func (p PathsConfig) ClassModel() string { return filepath.Join(p.ModelsDir, "model_class.json") }
func (p PathsConfig) Results() string    { return filepath.Join(p.ModelsDir, "results_ml.txt") }

// CleanConfig holds the outlier-filter floors. The low threshold is a fixed
// policy constant, not derived from the batch: prices below it are symbolic
// transfers and donations, not measurement noise.
type CleanConfig struct {
	MinPricePerM2 float64 `yaml:"min_price_per_m2" mapstructure:"min_price_per_m2"`
	MinValue      float64 `yaml:"min_value" mapstructure:"min_value"`
}

// FeaturesConfig configures the feature assembly step.
type FeaturesConfig struct {
	PropertyType string  `yaml:"property_type" mapstructure:"property_type"` // empty = keep all types
	MinSurface   float64 `yaml:"min_surface" mapstructure:"min_surface"`
	MaxSurface   float64 `yaml:"max_surface" mapstructure:"max_surface"`
	TestRatio    float64 `yaml:"test_ratio" mapstructure:"test_ratio"`
	Seed         int64   `yaml:"seed" mapstructure:"seed"`
}

// TrainConfig holds model hyperparameters.
type TrainConfig struct {
	Trees          int     `yaml:"trees" mapstructure:"trees"`
	LearningRate   float64 `yaml:"learning_rate" mapstructure:"learning_rate"`
	MaxDepth       int     `yaml:"max_depth" mapstructure:"max_depth"`
	MinSamplesLeaf int     `yaml:"min_samples_leaf" mapstructure:"min_samples_leaf"`
	LogisticEpochs int     `yaml:"logistic_epochs" mapstructure:"logistic_epochs"`
	LogisticLR     float64 `yaml:"logistic_lr" mapstructure:"logistic_lr"`
}

// FetchConfig configures the DVF source downloads. The published exports
// are one gzipped CSV per department per year.
type FetchConfig struct {
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	Department string `yaml:"department" mapstructure:"department"`
	Years      []int  `yaml:"years" mapstructure:"years"`
}

// GeocodeConfig configures the BAN address API client.
type GeocodeConfig struct {
	BaseURL  string  `yaml:"base_url" mapstructure:"base_url"`
	CityCode string  `yaml:"city_code" mapstructure:"city_code"`
	RPS      float64 `yaml:"rps" mapstructure:"rps"`
}

// StoreConfig configures the estimation log backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the estimation API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// FiscalConfig configures the IRCOM cleaning step.
type FiscalConfig struct {
	Years      []int `yaml:"years" mapstructure:"years"`
	HeaderRows int   `yaml:"header_rows" mapstructure:"header_rows"`
}

// ListingsConfig configures the scraped-listings cleaning step.
type ListingsConfig struct {
	Sources []string `yaml:"sources" mapstructure:"sources"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IMMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("paths.data_dir", "data")
	v.SetDefault("paths.models_dir", "models")
	v.SetDefault("clean.min_price_per_m2", 2000)
	v.SetDefault("clean.min_value", 10000)
	v.SetDefault("features.property_type", "Appartement")
	v.SetDefault("features.min_surface", 9)
	v.SetDefault("features.max_surface", 300)
	v.SetDefault("features.test_ratio", 0.3)
	v.SetDefault("features.seed", 42)
	v.SetDefault("train.trees", 200)
	v.SetDefault("train.learning_rate", 0.05)
	v.SetDefault("train.max_depth", 6)
	v.SetDefault("train.min_samples_leaf", 20)
	v.SetDefault("train.logistic_epochs", 1000)
	v.SetDefault("train.logistic_lr", 0.1)
	v.SetDefault("fetch.base_url", "https://files.data.gouv.fr/geo-dvf/latest/csv")
	v.SetDefault("fetch.department", "75")
	v.SetDefault("fetch.years", []int{2020, 2021, 2022, 2023, 2024})
	v.SetDefault("geocode.base_url", "https://api-adresse.data.gouv.fr")
	v.SetDefault("geocode.city_code", "75056")
	v.SetDefault("geocode.rps", 10)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "estimations.db")
	v.SetDefault("server.port", 8000)
	v.SetDefault("fiscal.years", []int{2020, 2021, 2022, 2023})
	v.SetDefault("fiscal.header_rows", 20)
	v.SetDefault("listings.sources", []string{"orpi", "laforet", "century21", "stephane_plaza", "lefigaro"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
