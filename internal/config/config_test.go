package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisbench/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 23, cfg.Accounting.SchemaCutoff)
	assert.Equal(t, 60*time.Second, cfg.Accounting.BatchTimeout)
	assert.Equal(t, 500, cfg.Accounting.PreviewLength)
	assert.Equal(t, 0.1, cfg.LLM.Primary.Temperature)
	assert.Equal(t, 3000, cfg.LLM.Primary.MaxTokens)
	assert.Equal(t, int64(20*1024*1024), cfg.Upload.MaxBytes())
	assert.Nil(t, cfg.LLM.FallbackConfig())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FISBENCH_ACCOUNTING_SCHEMA_CUTOFF", "30")
	t.Setenv("FISBENCH_LLM_FALLBACK_PROVIDER", "gemini")
	t.Setenv("FISBENCH_LLM_FALLBACK_DEFAULT_MODEL", "gemini-2.0-flash")
	t.Setenv("FISBENCH_OCR_ENABLED", "paddle_ocr, amazon_textract ,")
	t.Setenv("FISBENCH_ACCOUNTING_BATCH_TIMEOUT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Accounting.SchemaCutoff)
	assert.Equal(t, 5*time.Second, cfg.Accounting.BatchTimeout)
	assert.Equal(t, []string{"paddle_ocr", "amazon_textract"}, cfg.OCR.Enabled)
	fb := cfg.LLM.FallbackConfig()
	require.NotNil(t, fb)
	assert.Equal(t, "gemini", fb.Provider)
	assert.Equal(t, "gemini-2.0-flash", fb.DefaultModel)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)

	t.Setenv("FISBENCH_SERVER_PORT", ":7070")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Port)
}

func TestLoad_RejectsInvalidCutoff(t *testing.T) {
	t.Setenv("FISBENCH_ACCOUNTING_SCHEMA_CUTOFF", "0")

	_, err := config.Load()
	assert.Error(t, err)
}
