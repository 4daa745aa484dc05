package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/heic2png-cli/internal/converter"
	"github.com/AnyUserName/heic2png-cli/internal/manifest"
)

var (
	version = "0.1.0"
	verbose bool

	batchMode     bool
	writeManifest bool
)

// ManifestName is the file written into the output directory when
// --manifest is set.
const ManifestName = "heic2png.manifest.json"

var rootCmd = &cobra.Command{
	Use:   "heic2png <input> [output]",
	Short: "Convert HEIC images to PNG",
	Long: `heic2png — converts HEIC images to PNG, singly or in batch.

Single mode converts one file; the output defaults to the input path
with a .png extension, or lands inside <output> when that is an
existing directory.

Batch mode (--batch) converts every *.heic file in the input directory
across parallel workers, writing into <output> (default:
<input>/converted). One bad file never aborts the rest.`,
	Version:       version,
	Args:          cobra.RangeArgs(1, 2),
	RunE:          runConvert,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVar(&batchMode, "batch", false, "process all HEIC files in input directory")
	rootCmd.Flags().BoolVar(&writeManifest, "manifest", false, "write "+ManifestName+" into the output directory (batch mode)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"heic2png %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func runConvert(_ *cobra.Command, args []string) error {
	output := ""
	if len(args) == 2 {
		output = args[1]
	}

	resolved, err := converter.ResolvePaths(converter.Request{
		InputPath:  args[0],
		OutputPath: output,
		Batch:      batchMode,
	})
	if err != nil {
		return err
	}

	if !resolved.Batch {
		logVerbose("converting %s -> %s", resolved.Source, resolved.Dest)
		dest, err := converter.ConvertOne(resolved.Source, resolved.Dest)
		if err != nil {
			return err
		}
		fmt.Printf("Successfully converted to: %s\n", dest)
		return nil
	}

	logVerbose("input:  %s", resolved.InputDir)
	logVerbose("output: %s", resolved.OutputDir)

	report, err := converter.ConvertBatch(resolved.InputDir, resolved.OutputDir)
	if err != nil {
		return err
	}

	// Per-file failures are warnings; the batch itself still succeeds.
	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "[heic2png] warning: %v\n", f.Err)
	}

	if writeManifest {
		m, err := manifest.Build(report)
		if err != nil {
			return fmt.Errorf("build manifest: %w", err)
		}
		path := filepath.Join(resolved.OutputDir, ManifestName)
		if err := manifest.WriteJSON(m, path); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		logVerbose("manifest: %s", path)
	}

	fmt.Printf("Successfully converted %d files:\n", len(report.Converted))
	for _, dest := range report.Converted {
		fmt.Printf("  - %s\n", dest)
	}
	return nil
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[heic2png] "+format+"\n", args...)
	}
}
