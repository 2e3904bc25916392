package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-sweep/internal/solana"
)

func testSecret(t *testing.T, n byte) (string, solana.PublicKey) {
	t.Helper()
	kp, err := solana.NewKeypairFromSeed(bytes.Repeat([]byte{n}, 32))
	require.NoError(t, err)
	return kp.SecretKey(), kp.PublicKey()
}

func TestReadSecretLines(t *testing.T) {
	input := "first\n\n  # comment\n  second  \r\n\t\nthird"

	secrets, err := ReadSecretLines(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, secrets)
}

func TestLoadWallets(t *testing.T) {
	secretA, pubA := testSecret(t, 1)
	secretB, pubB := testSecret(t, 2)

	path := filepath.Join(t.TempDir(), "wallets.txt")
	content := "# source wallets\n" + secretA + "\n\n" + secretB + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	wallets, err := LoadWallets(path)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, pubA, wallets[0].PublicKey())
	assert.Equal(t, pubB, wallets[1].PublicKey())
}

func TestLoadWallets_InvalidEntry(t *testing.T) {
	secretA, _ := testSecret(t, 1)
	bad := "notavalidsecretkey"

	path := filepath.Join(t.TempDir(), "wallets.txt")
	require.NoError(t, os.WriteFile(path, []byte(secretA+"\n"+bad+"\n"), 0o600))

	_, err := LoadWallets(path)
	require.ErrorIs(t, err, solana.ErrInvalidSecretKey)
	assert.Contains(t, err.Error(), "entry 2")
	assert.NotContains(t, err.Error(), bad)
}

func TestLoadWallets_MissingFile(t *testing.T) {
	_, err := LoadWallets(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWallets_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n# nothing here\n"), 0o600))

	wallets, err := LoadWallets(path)
	require.NoError(t, err)
	assert.Empty(t, wallets)
}
