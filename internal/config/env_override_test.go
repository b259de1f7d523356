package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Credential(t *testing.T) {
	t.Run("process environment wins", func(t *testing.T) {
		t.Setenv(CredentialEnvVar, "sk-from-env-000000000000")
		cwd := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(cwd, EnvFileName),
			[]byte(CredentialEnvVar+"=sk-from-dotenv-0000000000\n"), 0600))

		cfg := &Config{Cwd: cwd}
		cfg.applyEnvOverrides()

		assert.Equal(t, "sk-from-env-000000000000", cfg.AI.APIKey)
	})

	t.Run("dotenv fallback", func(t *testing.T) {
		t.Setenv(CredentialEnvVar, "")
		cwd := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(cwd, EnvFileName),
			[]byte("# comment\n"+CredentialEnvVar+"=\"sk-from-dotenv-0000000000\"\n"), 0600))

		cfg := &Config{Cwd: cwd}
		cfg.applyEnvOverrides()

		assert.Equal(t, "sk-from-dotenv-0000000000", cfg.AI.APIKey)
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv(CredentialEnvVar, "")
		cfg := &Config{Cwd: t.TempDir()}
		cfg.applyEnvOverrides()
		assert.Empty(t, cfg.AI.APIKey)
	})
}

func TestEnvOverrides_ExtensionPath(t *testing.T) {
	t.Setenv(CredentialEnvVar, "")

	t.Run("fills empty path", func(t *testing.T) {
		t.Setenv(ExtensionEnvVar, "/opt/ai-extension")
		cfg := &Config{}
		cfg.applyEnvOverrides()
		assert.Equal(t, "/opt/ai-extension", cfg.AI.ExtensionPath)
	})

	t.Run("does not override configured path", func(t *testing.T) {
		t.Setenv(ExtensionEnvVar, "/opt/ai-extension")
		cfg := &Config{AI: AIConfig{ExtensionPath: "/custom"}}
		cfg.applyEnvOverrides()
		assert.Equal(t, "/custom", cfg.AI.ExtensionPath)
	})
}
