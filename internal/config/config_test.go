package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	st, err := Load(envMap(map[string]string{
		EnvRPCURL:           "https://api.mainnet-beta.solana.com",
		EnvMainWalletSecret: "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://api.mainnet-beta.solana.com", st.RPCURL)
	assert.Equal(t, "secret", st.MainWalletSecret)
	assert.Equal(t, DefaultWalletsFile, st.WalletsFile)
	assert.Equal(t, 0, st.RPCRateLimit)
	assert.Equal(t, 3, st.RPCMaxRetries)
	assert.Equal(t, "", st.PostgresDSN)
	assert.Equal(t, "info", st.LogLevel)
	assert.Equal(t, "text", st.LogFormat)
}

func TestLoad_MissingEndpoint(t *testing.T) {
	var asked []string
	getenv := func(k string) string {
		asked = append(asked, k)
		if k == EnvMainWalletSecret {
			return "secret"
		}
		return ""
	}

	_, err := Load(getenv)
	require.ErrorIs(t, err, ErrMissingSetting)
	assert.Contains(t, err.Error(), EnvRPCURL)
	// The endpoint is checked before the wallet secret is touched.
	assert.Equal(t, []string{EnvRPCURL}, asked)
}

func TestLoad_MissingMainWallet(t *testing.T) {
	_, err := Load(envMap(map[string]string{EnvRPCURL: "http://localhost:8899"}))
	require.ErrorIs(t, err, ErrMissingSetting)
	assert.Contains(t, err.Error(), EnvMainWalletSecret)
}

func TestLoad_QuotedValues(t *testing.T) {
	st, err := Load(envMap(map[string]string{
		EnvRPCURL:           `  "http://localhost:8899" `,
		EnvMainWalletSecret: `'secret'`,
		EnvRPCRateLimit:     `"10"`,
		EnvWalletsFile:      "''",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8899", st.RPCURL)
	assert.Equal(t, "secret", st.MainWalletSecret)
	assert.Equal(t, 10, st.RPCRateLimit)
	assert.Equal(t, DefaultWalletsFile, st.WalletsFile)
}

func TestLoad_QuotesOnlyIsMissing(t *testing.T) {
	_, err := Load(envMap(map[string]string{
		EnvRPCURL:           `""`,
		EnvMainWalletSecret: "secret",
	}))
	assert.ErrorIs(t, err, ErrMissingSetting)
}

func TestLoad_InvalidInteger(t *testing.T) {
	base := map[string]string{
		EnvRPCURL:           "http://localhost:8899",
		EnvMainWalletSecret: "secret",
	}

	for _, key := range []string{EnvRPCRateLimit, EnvRPCMaxRetries} {
		for _, v := range []string{"abc", "-1"} {
			env := map[string]string{}
			for k, val := range base {
				env[k] = val
			}
			env[key] = v

			_, err := Load(envMap(env))
			assert.Error(t, err, "%s=%s", key, v)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, LoadEnvFile(""))
	require.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SWEEP_TEST_FROM_FILE=\"value\"\nSWEEP_TEST_PRESET=file\n"), 0o600))

	t.Setenv("SWEEP_TEST_PRESET", "process")
	t.Setenv("SWEEP_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("SWEEP_TEST_FROM_FILE"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "value", os.Getenv("SWEEP_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("SWEEP_TEST_PRESET"))
}
