package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modkit-dev/modkit/internal/loaderfiles"
)

const loaderFilesArchiveName = "loader_files.zip"

func loaderFilesProvisioner() *loaderfiles.Provisioner {
	return loaderfiles.New(app.resolver.LoaderFilesDir(), filepath.Join(app.resolver.Root(), "_internal", loaderFilesArchiveName))
}

// ensureLoaderFilesApplied provisions the loader-file whitelist into
// sourceDir (re-extracting from the bundled archive if needed) and copies
// it into gameDir, per spec §4.B. Called automatically before a full
// launch (spec control flow: "Launcher reads E + executes loader + game").
func ensureLoaderFilesApplied(gameDir string) error {
	p := loaderFilesProvisioner()
	if err := p.EnsureAvailable(); err != nil {
		return err
	}
	if _, allOK := p.Apply(gameDir); !allOK {
		return fmt.Errorf("one or more loader files failed to apply")
	}
	return nil
}

var loaderFilesCmd = &cobra.Command{
	Use:   "loader-files",
	Short: "Manage the fixed loader-file whitelist copied into the game directory",
	Long: `Unpack, apply, and remove the fixed whitelist of mod-loader files
copied into the game directory (spec §4.B).

Examples:
  modkit mods loader-files apply
  modkit mods loader-files remove
  modkit mods loader-files status`,
}

var loaderFilesApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Ensure the loader files are unpacked and copied into the game directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureLoaderFilesApplied(filepath.Dir(gamePath())); err != nil {
			return err
		}
		fmt.Println("loader files applied")
		return nil
	},
}

var loaderFilesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the loader files from the game directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loaderFilesProvisioner().Remove(filepath.Dir(gamePath())); err != nil {
			return fmt.Errorf("removing loader files: %w", err)
		}
		fmt.Println("loader files removed")
		return nil
	},
}

var loaderFilesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the loader files are currently applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(loaderfiles.IsApplied(filepath.Dir(gamePath())))
		return nil
	},
}

func init() {
	loaderFilesCmd.AddCommand(loaderFilesApplyCmd, loaderFilesRemoveCmd, loaderFilesStatusCmd)
	modsCmd.AddCommand(loaderFilesCmd)
}
