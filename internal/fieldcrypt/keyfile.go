package fieldcrypt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// LoadOrCreateKey reads the master key from path, generating and persisting a
// new one if the file does not exist. Losing the key file permanently strands
// every previously encrypted row.
//
// Generation is not safe under concurrent first use: call this once at
// startup, before any request traffic.
func LoadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if decErr != nil {
			return nil, fmt.Errorf("key file %s is corrupt: %w", path, decErr)
		}
		if len(key) != masterKeySize {
			return nil, fmt.Errorf("key file %s has wrong key size %d", path, len(key))
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key := make([]byte, masterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(key) + "\n"
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("persist key file: %w", err)
	}
	return key, nil
}
