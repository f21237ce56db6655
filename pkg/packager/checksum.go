/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package packager

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// checksumFileName is the standard name for the optional checksums file.
const checksumFileName = "checksums.txt"

// writeChecksums creates a checksums.txt in dir with SHA256 checksums of
// the given files (paths relative to dir). File order follows the input,
// which is already deterministic, so the checksum file is too.
func writeChecksums(dir string, files []string) (string, error) {
	lines := make([]string, 0, len(files))

	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			return "", fmt.Errorf("failed to read %s for checksum: %w", rel, err)
		}
		hash := sha256.Sum256(data)
		lines = append(lines, fmt.Sprintf("%s  %s", hex.EncodeToString(hash[:]), rel))
	}

	path := filepath.Join(dir, checksumFileName)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write checksums: %w", err)
	}

	return checksumFileName, nil
}
