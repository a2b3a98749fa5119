package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 0.65, cfg.Recognition.SimilarityThreshold)
	assert.Equal(t, 1, cfg.Recognition.TopK)
	assert.Equal(t, 1.0, cfg.Recognition.CosineWeight)
	assert.Equal(t, 0.0, cfg.Recognition.L2Weight)
	assert.Equal(t, 20.0, cfg.Recognition.PoseAngleThreshold)
	assert.Equal(t, 50.0, cfg.Quality.MinBrightness)
	assert.Equal(t, 220.0, cfg.Quality.MaxBrightness)
	assert.Equal(t, 10000.0, cfg.Quality.MinFaceArea)
	assert.Equal(t, 10, cfg.Enrollment.MinValidSamples)
	assert.Equal(t, 20, cfg.Enrollment.MaxSamples)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
recognition:
  similarity_threshold: 0.72
  top_k: 5
  cosine_weight: 0.6
  l2_weight: 0.4
enrollment:
  min_valid_samples: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.72, cfg.Recognition.SimilarityThreshold)
	assert.Equal(t, 5, cfg.Recognition.TopK)
	assert.Equal(t, 0.6, cfg.Recognition.CosineWeight)
	assert.Equal(t, 0.4, cfg.Recognition.L2Weight)
	assert.Equal(t, 4, cfg.Enrollment.MinValidSamples)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  host: confighost
`)

	t.Setenv("ATTEND_SERVER_PORT", "7070")
	t.Setenv("ATTEND_DB_HOST", "envhost")
	t.Setenv("ATTEND_SIMILARITY_THRESHOLD", "0.8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "envhost", cfg.Database.Host)
	assert.Equal(t, 0.8, cfg.Recognition.SimilarityThreshold)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5433, Name: "attend", User: "app", Password: "secret",
	}
	assert.Equal(t, "postgres://app:secret@db:5433/attend?sslmode=disable", d.DSN())
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.65, cfg.Recognition.SimilarityThreshold)
	assert.Equal(t, 2, cfg.Notifier.Workers)
}
