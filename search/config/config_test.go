package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/larose/lynxeval/search/diversity"
	"github.com/larose/lynxeval/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "id", cfg.Index.ExternalIdField)
	assert.Equal(t, query.DefaultField, cfg.Index.DefaultField)
	assert.Equal(t, 100, cfg.Queries.ResultLength)
	assert.Equal(t, "rankedboolean", cfg.Retrieval.Algorithm)
	assert.Equal(t, 1.2, cfg.Retrieval.BM25.K1)
	assert.Equal(t, 2500.0, cfg.Retrieval.Indri.Mu)
	assert.False(t, cfg.Diversity.Enabled)

	assert.ErrorIs(t, cfg.Validate(), ErrMissingParameter)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
index:
  path: /data/index
queries:
  path: queries.txt
  output: run.txt
  resultLength: 10
retrieval:
  algorithm: bm25
  bm25:
    k1: 1.5
diversity:
  enabled: true
  algorithm: pm2
  lambda: 0.5
  maxInputRankingsLength: 100
  maxResultRankingLength: 50
  intentsFile: intents.txt
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/data/index", cfg.Index.Path)
	assert.Equal(t, 10, cfg.Queries.ResultLength)
	// Unset values keep their defaults
	assert.Equal(t, 4, cfg.Queries.Workers)
	assert.Equal(t, 0.75, cfg.Retrieval.BM25.B)

	model, err := cfg.RetrievalModel()
	require.NoError(t, err)
	assert.Equal(t, query.NewBM25(1.5, 0.75, 500), model)

	options, err := cfg.DiversityOptions(true)
	require.NoError(t, err)
	assert.Equal(t, diversity.Options{
		Algorithm:              diversity.PM2,
		Lambda:                 0.5,
		MaxInputRankingLength:  100,
		MaxResultRankingLength: 50,
		Normalize:              true,
	}, options)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "index: [unclosed"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LYNX_INDEX_PATH", "/env/index")
	t.Setenv("LYNX_QUERIES_PATH", "queries.txt")
	t.Setenv("LYNX_QUERIES_OUTPUT", "run.txt")
	t.Setenv("LYNX_QUERIES_WORKERS", "8")
	t.Setenv("LYNX_RETRIEVAL_ALGORITHM", "Indri")
	t.Setenv("LYNX_DIVERSITY_LAMBDA", "not a number")

	cfg, err := Load(writeConfig(t, "index:\n  path: /file/index\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/env/index", cfg.Index.Path)
	assert.Equal(t, 8, cfg.Queries.Workers)
	assert.Equal(t, 0.0, cfg.Diversity.Lambda)

	model, err := cfg.RetrievalModel()
	require.NoError(t, err)
	assert.Equal(t, query.Indri, model.Kind)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Index.Path = "index"
		cfg.Queries.Path = "queries.txt"
		cfg.Queries.Output = "run.txt"
		return cfg
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Retrieval.Algorithm = "tfidf"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Retrieval.Algorithm = "bm25"
	cfg.Retrieval.BM25.B = 2
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Diversity.Enabled = true
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrMissingParameter)
	assert.Contains(t, err.Error(), "diversity.intentsFile")

	cfg = valid()
	cfg.Diversity = DiversityConfig{
		Enabled:                true,
		Algorithm:              "xquad",
		Lambda:                 1.5,
		MaxInputRankingsLength: 10,
		MaxResultRankingLength: 10,
		IntentsFile:            "intents.txt",
	}
	assert.ErrorIs(t, cfg.Validate(), diversity.ErrInvalidOptions)
}
