// Package config loads sweep settings from the environment and the wallets
// file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment keys.
const (
	EnvRPCURL           = "MAINNET_RPC_URL"
	EnvMainWalletSecret = "MAIN_WALLET_SECRET_KEY"
	EnvWalletsFile      = "WALLETS_FILE"
	EnvRPCRateLimit     = "RPC_RATE_LIMIT"
	EnvRPCMaxRetries    = "RPC_MAX_RETRIES"
	EnvPostgresDSN      = "POSTGRES_DSN"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"
)

// DefaultWalletsFile is read when no path is configured.
const DefaultWalletsFile = "wallets.txt"

// ErrMissingSetting is returned when a required setting is absent or empty.
var ErrMissingSetting = errors.New("missing required setting")

// Settings keeps all configuration options.
type Settings struct {
	RPCURL           string
	MainWalletSecret string
	WalletsFile      string
	RPCRateLimit     int // requests per second, 0 = unlimited
	RPCMaxRetries    int
	PostgresDSN      string
	LogLevel         string
	LogFormat        string // text or json
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads settings using getenv (os.Getenv in production).
// The RPC endpoint and the main wallet secret are required.
func Load(getenv func(string) string) (Settings, error) {
	var st Settings
	var err error

	if st.RPCURL, err = Required(getenv, EnvRPCURL); err != nil {
		return Settings{}, err
	}
	if st.MainWalletSecret, err = Required(getenv, EnvMainWalletSecret); err != nil {
		return Settings{}, err
	}

	st.WalletsFile = Optional(getenv, EnvWalletsFile, DefaultWalletsFile)
	st.PostgresDSN = Optional(getenv, EnvPostgresDSN, "")
	st.LogLevel = Optional(getenv, EnvLogLevel, "info")
	st.LogFormat = Optional(getenv, EnvLogFormat, "text")

	if st.RPCRateLimit, err = optionalInt(getenv, EnvRPCRateLimit, 0); err != nil {
		return Settings{}, err
	}
	if st.RPCMaxRetries, err = optionalInt(getenv, EnvRPCMaxRetries, 3); err != nil {
		return Settings{}, err
	}

	return st, nil
}

// Required returns the cleaned value of name or ErrMissingSetting.
func Required(getenv func(string) string, name string) (string, error) {
	v := Clean(getenv(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s env variable is required", ErrMissingSetting, name)
	}
	return v, nil
}

// Optional returns the cleaned value of name, or def when empty.
func Optional(getenv func(string) string, name, def string) string {
	if v := Clean(getenv(name)); v != "" {
		return v
	}
	return def
}

// Clean trims surrounding whitespace, then surrounding quote characters.
func Clean(v string) string {
	return strings.Trim(strings.TrimSpace(v), `"'`)
}

func optionalInt(getenv func(string) string, name string, def int) (int, error) {
	s := Clean(getenv(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid non-negative integer %q", name, s)
	}
	return n, nil
}
