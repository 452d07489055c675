package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ArquivoEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "APP_NAME=Conciliacao Teste\n" +
		"APP_LOG_DIR=" + filepath.Join(dir, "logs") + "\n" +
		"APP_EXPORT_DIR=" + filepath.Join(dir, "exports") + "\n" +
		"APP_DB_NAME=" + filepath.Join(dir, "db", "teste.db") + "\n" +
		"APP_CONCILIADOR_URL=http://conciliador:9000/\n" +
		"APP_TOLERANCIA_VALOR=0.05\n" +
		"APP_SESSION_TIMEOUT=60\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	for _, k := range []string{"APP_NAME", "APP_LOG_DIR", "APP_EXPORT_DIR", "APP_DB_NAME", "APP_CONCILIADOR_URL", "APP_TOLERANCIA_VALOR", "APP_SESSION_TIMEOUT"} {
		k := k
		old, had := os.LookupEnv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			} else {
				os.Unsetenv(k)
			}
		})
		os.Unsetenv(k)
	}

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "Conciliacao Teste", cfg.AppName)
	assert.Equal(t, "http://conciliador:9000", cfg.ConciliadorURL)
	assert.True(t, cfg.ToleranciaValor.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, time.Minute, cfg.SessionTimeout)
	assert.DirExists(t, filepath.Join(dir, "logs"))
	assert.DirExists(t, filepath.Join(dir, "db"))
}

func TestLoadConfig_ToleranciaInvalida(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_LOG_DIR", filepath.Join(dir, "logs"))
	t.Setenv("APP_TOLERANCIA_VALOR", "abc")

	_, err := LoadConfig(filepath.Join(dir, "inexistente.env"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestConfigValidate(t *testing.T) {
	base := Config{
		DBEngine:               "sqlite",
		ConciliadorURL:         "http://localhost:8000",
		SessionTimeout:         time.Hour,
		SessionCleanupEnabled:  true,
		SessionCleanupInterval: time.Minute,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"motor desconhecido", func(c *Config) { c.DBEngine = "mysql" }},
		{"url sem esquema", func(c *Config) { c.ConciliadorURL = "localhost" }},
		{"timeout zerado", func(c *Config) { c.SessionTimeout = 0 }},
		{"limpeza sem intervalo", func(c *Config) { c.SessionCleanupInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError("arquivos inválidos", map[string]string{"b": "y", "a": "x"})
	assert.Equal(t, "arquivos inválidos (Detalhes: a: x, b: y)", ve.Error())
	assert.ErrorIs(t, ve, ErrValidation)

	wrapped := WrapErrorf(ErrExport, "gerando %s", "pdf")
	assert.Equal(t, "gerando pdf: falha ao exportar dados", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrExport)

	dbErr := NewDatabaseErrorDetail("salvando resultado", ErrNotFound)
	assert.ErrorIs(t, dbErr, ErrDatabase)
	assert.ErrorIs(t, dbErr, ErrNotFound)
}
