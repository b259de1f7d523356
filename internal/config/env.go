package config

import (
	"os"
	"path/filepath"

	"repopack/internal/logging"

	"github.com/joho/godotenv"
)

const (
	// EnvFileName is read from the working directory when the credential is
	// not exported in the process environment.
	EnvFileName = ".env"

	// ExtensionEnvVar points at the directory holding the AI worker.
	ExtensionEnvVar = "REPOPACK_AI_EXTENSION"
)

// applyEnvOverrides resolves environment-provided settings into the config.
// This is the only place the credential is read from process state; the AI
// bridge consumes AI.APIKey and never looks at the environment itself.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv(ExtensionEnvVar); path != "" && c.AI.ExtensionPath == "" {
		c.AI.ExtensionPath = path
	}

	if key := os.Getenv(CredentialEnvVar); key != "" {
		c.AI.APIKey = key
		return
	}

	if c.Cwd == "" {
		return
	}
	values, err := godotenv.Read(filepath.Join(c.Cwd, EnvFileName))
	if err != nil {
		return
	}
	if key := values[CredentialEnvVar]; key != "" {
		logging.BootDebug("Using %s from %s", CredentialEnvVar, EnvFileName)
		c.AI.APIKey = key
	}
}
