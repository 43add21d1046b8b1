// Package config loads the batch evaluation configuration from a YAML file
// with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/larose/lynxeval/search/diversity"
	"github.com/larose/lynxeval/search/query"
	"gopkg.in/yaml.v3"
)

var ErrMissingParameter = errors.New("missing required parameter")

// Config is the top-level configuration of a batch evaluation.
type Config struct {
	Index     IndexConfig     `yaml:"index"`
	Queries   QueriesConfig   `yaml:"queries"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Diversity DiversityConfig `yaml:"diversity"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// IndexConfig locates the index and names its special fields.
type IndexConfig struct {
	Path            string   `yaml:"path"`
	ExternalIdField string   `yaml:"externalIdField"`
	DefaultField    string   `yaml:"defaultField"`
	Fields          []string `yaml:"fields"`
}

// QueriesConfig describes the query file and the run written for it.
type QueriesConfig struct {
	Path         string `yaml:"path"`
	Output       string `yaml:"output"`
	ResultLength int    `yaml:"resultLength"`
	Workers      int    `yaml:"workers"`
	RunTag       string `yaml:"runTag"`
}

// RetrievalConfig selects the retrieval model and its parameters.
type RetrievalConfig struct {
	Algorithm string      `yaml:"algorithm"`
	BM25      BM25Config  `yaml:"bm25"`
	Indri     IndriConfig `yaml:"indri"`
}

type BM25Config struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
	K3 float64 `yaml:"k3"`
}

type IndriConfig struct {
	Mu     float64 `yaml:"mu"`
	Lambda float64 `yaml:"lambda"`
}

// DiversityConfig enables the re-ranking of every query over its intents.
// Intents come from IntentsFile, and their rankings from InitialRankingFile
// when it is set instead of being evaluated.
type DiversityConfig struct {
	Enabled                bool    `yaml:"enabled"`
	Algorithm              string  `yaml:"algorithm"`
	Lambda                 float64 `yaml:"lambda"`
	MaxInputRankingsLength int     `yaml:"maxInputRankingsLength"`
	MaxResultRankingLength int     `yaml:"maxResultRankingLength"`
	IntentsFile            string  `yaml:"intentsFile"`
	InitialRankingFile     string  `yaml:"initialRankingFile"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads a YAML config file (if provided) over the defaults and applies
// environment-variable overrides.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			ExternalIdField: "id",
			DefaultField:    query.DefaultField,
			Fields:          []string{"body", "title", "url", "inlink", "keywords"},
		},
		Queries: QueriesConfig{
			ResultLength: 100,
			Workers:      4,
			RunTag:       "lynxeval",
		},
		Retrieval: RetrievalConfig{
			Algorithm: "rankedboolean",
			BM25: BM25Config{
				K1: query.DefaultBM25K1,
				B:  query.DefaultBM25B,
				K3: query.DefaultBM25K3,
			},
			Indri: IndriConfig{
				Mu:     query.DefaultIndriMu,
				Lambda: query.DefaultIndriLambda,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// applyEnvOverrides reads LYNX_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LYNX_INDEX_PATH"); v != "" {
		cfg.Index.Path = v
	}
	if v := os.Getenv("LYNX_QUERIES_PATH"); v != "" {
		cfg.Queries.Path = v
	}
	if v := os.Getenv("LYNX_QUERIES_OUTPUT"); v != "" {
		cfg.Queries.Output = v
	}
	if v := os.Getenv("LYNX_QUERIES_RESULT_LENGTH"); v != "" {
		if length, err := strconv.Atoi(v); err == nil {
			cfg.Queries.ResultLength = length
		}
	}
	if v := os.Getenv("LYNX_QUERIES_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Queries.Workers = workers
		}
	}
	if v := os.Getenv("LYNX_RETRIEVAL_ALGORITHM"); v != "" {
		cfg.Retrieval.Algorithm = v
	}
	if v := os.Getenv("LYNX_DIVERSITY_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Diversity.Enabled = enabled
		}
	}
	if v := os.Getenv("LYNX_DIVERSITY_ALGORITHM"); v != "" {
		cfg.Diversity.Algorithm = v
	}
	if v := os.Getenv("LYNX_DIVERSITY_LAMBDA"); v != "" {
		if lambda, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Diversity.Lambda = lambda
		}
	}
	if v := os.Getenv("LYNX_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LYNX_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LYNX_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}

// Validate checks the parameters needed to run the queries.
func (c *Config) Validate() error {
	missing := make([]string, 0, 4)

	if c.Index.Path == "" {
		missing = append(missing, "index.path")
	}
	if c.Queries.Path == "" {
		missing = append(missing, "queries.path")
	}
	if c.Queries.Output == "" {
		missing = append(missing, "queries.output")
	}

	switch kind, err := query.ParseModelKind(c.Retrieval.Algorithm); {
	case err != nil:
		return err
	case kind == query.BM25 && (c.Retrieval.BM25.K1 < 0 || c.Retrieval.BM25.B < 0 || c.Retrieval.BM25.B > 1 || c.Retrieval.BM25.K3 < 0):
		return fmt.Errorf("invalid bm25 parameters %+v", c.Retrieval.BM25)
	case kind == query.Indri && (c.Retrieval.Indri.Mu < 0 || c.Retrieval.Indri.Lambda < 0 || c.Retrieval.Indri.Lambda > 1):
		return fmt.Errorf("invalid indri parameters %+v", c.Retrieval.Indri)
	}

	if c.Diversity.Enabled {
		if c.Diversity.Algorithm == "" {
			missing = append(missing, "diversity.algorithm")
		}
		if c.Diversity.MaxInputRankingsLength == 0 {
			missing = append(missing, "diversity.maxInputRankingsLength")
		}
		if c.Diversity.MaxResultRankingLength == 0 {
			missing = append(missing, "diversity.maxResultRankingLength")
		}
		if c.Diversity.IntentsFile == "" {
			missing = append(missing, "diversity.intentsFile")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingParameter, strings.Join(missing, ", "))
	}

	if c.Diversity.Enabled {
		if _, err := c.DiversityOptions(false); err != nil {
			return err
		}
	}

	return nil
}

// RetrievalModel builds the configured model. The configuration must be
// valid.
func (c *Config) RetrievalModel() (query.RetrievalModel, error) {
	kind, err := query.ParseModelKind(c.Retrieval.Algorithm)
	if err != nil {
		return query.RetrievalModel{}, err
	}

	switch kind {
	case query.UnrankedBoolean:
		return query.NewUnrankedBoolean(), nil
	case query.RankedBoolean:
		return query.NewRankedBoolean(), nil
	case query.BM25:
		return query.NewBM25(c.Retrieval.BM25.K1, c.Retrieval.BM25.B, c.Retrieval.BM25.K3), nil
	default:
		return query.NewIndri(c.Retrieval.Indri.Mu, c.Retrieval.Indri.Lambda), nil
	}
}

func (c *Config) DiversityOptions(normalize bool) (diversity.Options, error) {
	algorithm, err := diversity.ParseAlgorithm(c.Diversity.Algorithm)
	if err != nil {
		return diversity.Options{}, err
	}

	options := diversity.Options{
		Algorithm:              algorithm,
		Lambda:                 c.Diversity.Lambda,
		MaxInputRankingLength:  c.Diversity.MaxInputRankingsLength,
		MaxResultRankingLength: c.Diversity.MaxResultRankingLength,
		Normalize:              normalize,
	}

	// At least one intent is checked per query
	return options, options.Validate(1)
}
