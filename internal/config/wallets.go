package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"solana-wallet-sweep/internal/solana"
)

// ReadSecretLines returns one encoded secret per non-blank line.
// Lines starting with '#' are comments.
func ReadSecretLines(r io.Reader) ([]string, error) {
	var secrets []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		secrets = append(secrets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read secrets: %w", err)
	}
	return secrets, nil
}

// LoadWallets reads and decodes the source wallets file.
// Decoding errors report the line's position among the secrets, never the secret itself.
func LoadWallets(path string) ([]*solana.Keypair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wallets file: %w", err)
	}
	defer f.Close()

	secrets, err := ReadSecretLines(f)
	if err != nil {
		return nil, fmt.Errorf("wallets file %s: %w", path, err)
	}

	wallets := make([]*solana.Keypair, 0, len(secrets))
	for i, secret := range secrets {
		kp, err := solana.ParseKeypair(secret)
		if err != nil {
			return nil, fmt.Errorf("wallets file %s: entry %d: %w", path, i+1, err)
		}
		wallets = append(wallets, kp)
	}
	return wallets, nil
}
