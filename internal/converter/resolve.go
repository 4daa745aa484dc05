// Package converter implements HEIC to PNG conversion: argument
// resolution, single-file conversion, and parallel batch conversion.
package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for path validation. Wrapped with the offending path;
// match with errors.Is.
var (
	// ErrNotFound means the input path does not exist.
	ErrNotFound = errors.New("input path does not exist")

	// ErrInvalidInput means the input path exists but is the wrong kind
	// for the requested mode (directory in single mode, file in batch mode).
	ErrInvalidInput = errors.New("invalid input path")
)

// Request describes one invocation of the converter.
type Request struct {
	InputPath  string
	OutputPath string // optional; "" means derive from input
	Batch      bool
}

// Resolved holds validated paths for either mode. Exactly one of the
// pairs is populated, selected by Batch.
type Resolved struct {
	Batch bool

	// Batch mode: InputDir is scanned, OutputDir exists on return.
	InputDir  string
	OutputDir string

	// Single mode: Source is a regular file, Dest is the target PNG path.
	Source string
	Dest   string
}

// ResolvePaths validates the request and determines source and
// destination paths. In batch mode the output directory (and missing
// ancestors) are created; in single mode the destination's parents are
// left alone and a missing parent surfaces later as a write error.
func ResolvePaths(req Request) (*Resolved, error) {
	info, err := os.Stat(req.InputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, req.InputPath)
		}
		return nil, fmt.Errorf("stat %s: %w", req.InputPath, err)
	}

	if req.Batch {
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s must be a directory in batch mode", ErrInvalidInput, req.InputPath)
		}
		outDir := req.OutputPath
		if outDir == "" {
			outDir = filepath.Join(req.InputPath, "converted")
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
		return &Resolved{Batch: true, InputDir: req.InputPath, OutputDir: outDir}, nil
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s must be a regular file", ErrInvalidInput, req.InputPath)
	}

	dest := req.OutputPath
	switch {
	case dest == "":
		dest = replaceExtPNG(req.InputPath)
	default:
		if outInfo, err := os.Stat(dest); err == nil && outInfo.IsDir() {
			dest = filepath.Join(dest, pngName(req.InputPath))
		}
		// Otherwise the given path is used verbatim.
	}
	return &Resolved{Source: req.InputPath, Dest: dest}, nil
}

// replaceExtPNG swaps the path's extension for .png.
func replaceExtPNG(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}

// pngName returns the base name of path with its extension replaced by .png.
func pngName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}
