// Package manifest records the outcome of a batch conversion run as a
// JSON file with content hashes for each output.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/AnyUserName/heic2png-cli/internal/converter"
)

// Build creates a manifest from a batch report, reading each converted
// file back from disk for its size and content hash.
func Build(report *converter.Report) (*Manifest, error) {
	m := &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, dest := range report.Converted {
		info, err := os.Stat(dest)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", dest, err)
		}
		hash, err := fileHash(dest)
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, Entry{Dest: dest, Size: info.Size(), Hash: hash})
		m.Stats.TotalOutputBytes += info.Size()
	}

	for _, f := range report.Failures {
		m.Failures = append(m.Failures, FailureEntry{Source: f.Source, Error: f.Err.Error()})
	}

	m.Stats.Converted = len(m.Entries)
	m.Stats.Failed = len(m.Failures)
	return m, nil
}

// WriteJSON serializes the manifest to a JSON file.
func WriteJSON(m *Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// fileHash computes the xxHash64 of a file's contents, streaming, and
// returns it as 16 hex chars. Collision-safe for practical batch sizes.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
