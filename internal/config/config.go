package config

import (
	"os"
	"strings"

	"domgen/internal/runinfo"

	"gopkg.in/yaml.v3"
)

// Config captures all runtime options for a domain-generation run.
type Config struct {
	Driver         string  `yaml:"driver"`
	DSN            string  `yaml:"dsn"`
	Table          string  `yaml:"table"`
	EntityIDColumn string  `yaml:"entity_id_column"`
	DKTable        string  `yaml:"dk_table"`
	Seed           int64   `yaml:"seed"`
	CorrStrength   float64 `yaml:"correlation_strength"`
	SamplingProb   float64 `yaml:"sampling_probability"`
	MaxSampleSize  int     `yaml:"max_sample_size"`
	TopKFraction   float64 `yaml:"topk_fraction"`

	Sink    SinkConfig         `yaml:"sink"`
	Export  ExportConfig       `yaml:"export"`
	Storage StorageConfig      `yaml:"storage"`
	Logging Logging            `yaml:"logging"`
	RunInfo *runinfo.BasicInfo `yaml:"-"`
}

// SinkConfig names the tables the generated domain is persisted to.
type SinkConfig struct {
	DomainTable    string `yaml:"domain_table"`
	PosValuesTable string `yaml:"pos_values_table"`
	BatchSize      int    `yaml:"batch_size"`
}

// ExportConfig controls run artifact dumps.
type ExportConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
	KeepRaw   bool   `yaml:"keep_raw"`
}

// Logging controls stdout logging behavior.
type Logging struct {
	Verbose bool `yaml:"verbose"`
}

// StorageConfig holds external storage settings.
type StorageConfig struct {
	S3  S3Config  `yaml:"s3"`
	GCS GCSConfig `yaml:"gcs"`
}

// CloudEnabled reports whether any cloud storage backend is enabled.
func (s StorageConfig) CloudEnabled() bool {
	return s.GCS.Enabled || s.S3.Enabled
}

// S3Config configures S3 uploads (legacy and S3-compatible endpoints).
type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// GCSConfig configures GCS uploads.
type GCSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Load reads configuration from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	normalizeConfig(&cfg)
	cfg.RunInfo = runinfo.FromEnv()
	return cfg, nil
}

const (
	corrStrengthDefault  = 0.1
	samplingProbDefault  = 0.3
	maxSampleSizeDefault = 5
	topKFractionDefault  = 0.1
	sinkBatchSizeDefault = 500
)

func normalizeConfig(cfg *Config) {
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	if cfg.Driver == "" {
		cfg.Driver = "postgres"
	}
	if cfg.EntityIDColumn == "" {
		cfg.EntityIDColumn = "_tid_"
	}
	if cfg.CorrStrength < 0 {
		cfg.CorrStrength = 0
	}
	if cfg.CorrStrength > 1 {
		cfg.CorrStrength = 1
	}
	if cfg.SamplingProb < 0 {
		cfg.SamplingProb = 0
	}
	if cfg.SamplingProb > 1 {
		cfg.SamplingProb = 1
	}
	if cfg.MaxSampleSize <= 0 {
		cfg.MaxSampleSize = maxSampleSizeDefault
	}
	if cfg.TopKFraction < 0 {
		cfg.TopKFraction = topKFractionDefault
	}
	if cfg.Sink.DomainTable == "" {
		cfg.Sink.DomainTable = "cell_domain"
	}
	if cfg.Sink.PosValuesTable == "" {
		cfg.Sink.PosValuesTable = "pos_values"
	}
	if cfg.Sink.BatchSize <= 0 {
		cfg.Sink.BatchSize = sinkBatchSizeDefault
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = "exports"
	}
}

func defaultConfig() Config {
	return Config{
		Driver:         "postgres",
		DSN:            "postgres://localhost:5432/domgen?sslmode=disable",
		EntityIDColumn: "_tid_",
		DKTable:        "dk_cells",
		Seed:           45,
		CorrStrength:   corrStrengthDefault,
		SamplingProb:   samplingProbDefault,
		MaxSampleSize:  maxSampleSizeDefault,
		TopKFraction:   topKFractionDefault,
		Sink: SinkConfig{
			DomainTable:    "cell_domain",
			PosValuesTable: "pos_values",
			BatchSize:      sinkBatchSizeDefault,
		},
		Export: ExportConfig{
			Enabled:   true,
			OutputDir: "exports",
			KeepRaw:   true,
		},
	}
}
