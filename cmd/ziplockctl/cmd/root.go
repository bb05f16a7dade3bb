// Package cmd implements the ziplockctl commands, grounded on
// cmd/fleetctl/cmd's root.go + file-per-command split, trimmed to the
// commands that exercise the integrated strategy end-to-end
// (spec.md §5): create, open, add, list, save.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ziplock.sh/internal/archive"
	"ziplock.sh/internal/config"
)

var rootCmd = &cobra.Command{
	Use:     "ziplockctl",
	Short:   "ziplockctl - manage a ZipLock credential repository",
	Version: "0.1.0",
}

// defaultArchiveOpts is resolved once from configuration and reused by
// every command that talks to the archive codec.
var defaultArchiveOpts archive.Options

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	archive.SetPBKDF2Iterations(cfg.Crypto.PBKDF2Iterations)

	compressor, err := archive.CompressorByName(cfg.Archive.Compression)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	defaultArchiveOpts = archive.Options{
		MaxUncompressedSize: cfg.Archive.MaxUncompressedSize,
		Compressor:          compressor,
	}

	rootCmd.AddCommand(
		newCreateCmd(),
		newOpenCmd(),
		newAddCmd(),
		newListCmd(),
		newSaveCmd(),
	)
}

func printSuccess(format string, a ...any) {
	fmt.Printf("ok: %s\n", fmt.Sprintf(format, a...))
}

func printError(format string, a ...any) {
	fmt.Printf("error: %s\n", fmt.Sprintf(format, a...))
}
