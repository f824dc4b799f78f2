package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// YouTubeScope grants read and write access to the account's playlists.
const YouTubeScope = "https://www.googleapis.com/auth/youtube"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Copy        CopyConfig        `toml:"copy"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
}

// YouTubeConfig locates the OAuth client secret and the persisted user credential.
type YouTubeConfig struct {
	SecretsFile string   `toml:"secrets_file"`
	TokenFile   string   `toml:"token_file"`
	Scopes      []string `toml:"scopes"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the loopback address used for the OAuth callback.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// CopyConfig holds defaults for the copy command.
type CopyConfig struct {
	Order            string `toml:"order"`
	Privacy          string `toml:"privacy"`
	PageSize         int64  `toml:"page_size"`
	CleanupOnFailure bool   `toml:"cleanup_on_failure"`
	RecordHistory    bool   `toml:"record_history"`
}

// TokenPath returns the credential file location, defaulting to "<program>-oauth2.json" in the working directory.
func (c YouTubeConfig) TokenPath() string {
	if c.TokenFile != "" {
		return c.TokenFile
	}
	return ProgramName() + "-oauth2.json"
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrIO, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, path, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("%w: failed to write config file: %v", ErrIO, err)
	}

	return nil
}
