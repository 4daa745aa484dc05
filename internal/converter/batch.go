package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Failure records one file that could not be converted.
type Failure struct {
	Source string
	Err    error
}

// Report aggregates the outcome of a batch run. Converted holds
// destination paths in completion order; Failures holds every file that
// errored. len(Converted)+len(Failures) equals the number of discovered
// sources.
type Report struct {
	Converted []string
	Failures  []Failure
}

// ScanHEIC returns the regular *.heic files directly inside dir.
// Matching is a case-sensitive glob, so *.HEIC is not picked up on
// case-sensitive filesystems; subdirectories are not descended into.
func ScanHEIC(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.heic"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var sources []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		sources = append(sources, m)
	}
	return sources, nil
}

type batchResult struct {
	source string
	dest   string
	err    error
}

// ConvertBatch converts every HEIC file in inputDir into outputDir,
// running conversions across a bounded worker pool. A file's failure is
// recorded and never aborts its siblings; an empty directory yields an
// empty report. outputDir must already exist (ResolvePaths creates it).
func ConvertBatch(inputDir, outputDir string) (*Report, error) {
	sources, err := ScanHEIC(inputDir)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	if len(sources) == 0 {
		return report, nil
	}

	workers := runtime.NumCPU()
	if workers > len(sources) {
		workers = len(sources)
	}
	if workers < 1 {
		workers = 1
	}

	results := make(chan batchResult, len(sources))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			sem <- struct{}{} // acquire
			defer func() { <-sem }() // release

			dst := filepath.Join(outputDir, pngName(src))
			dest, err := ConvertOne(src, dst)
			results <- batchResult{source: src, dest: dest, err: err}
		}(src)
	}
	wg.Wait()
	close(results)

	// Channel order is completion order.
	for r := range results {
		if r.err != nil {
			report.Failures = append(report.Failures, Failure{Source: r.source, Err: r.err})
			continue
		}
		report.Converted = append(report.Converted, r.dest)
	}
	return report, nil
}
