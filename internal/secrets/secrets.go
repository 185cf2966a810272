// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file holds one secret: the filename is the key name and the
// first non-blank line of the file is the value, so a trailing newline
// or editor artifact never ends up inside an Authorization header.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// APIKeyFile is the secrets file the CLI reads the NASA ADS token from.
const APIKeyFile = "ads-api-key"

// Load reads every regular file in dir into a key/value map. A missing
// directory is not an error; Load returns an empty map. Unreadable
// files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		value, err := readSecret(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// readSecret returns the first non-blank line of the file, trimmed.
func readSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if v := strings.TrimSpace(line); v != "" {
			return v, nil
		}
	}
	return "", nil
}
