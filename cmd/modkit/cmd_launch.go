package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modkit-dev/modkit/internal/launcher"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch the game through the mod loader with the current profile",
	Long: `Verify the game and loader executables, persist the current loader
profile, best-effort kill conflicting processes, then spawn the loader
detached (spec §4.G).

Examples:
  modkit launch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureLoaderFilesApplied(filepath.Dir(gamePath())); err != nil {
			return fmt.Errorf("applying loader files: %w", err)
		}

		model, err := loadCurrentModel()
		if err != nil {
			return err
		}

		params, err := launcher.LoadLaunchParams(filepath.Join(app.resolver.ESRDir(), "launch_params.json"))
		if err != nil {
			return fmt.Errorf("reading launch parameters: %w", err)
		}

		req := launcher.Request{
			GamePath:        gamePath(),
			GameBaseName:    app.settings.GameBaseName,
			GameID:          app.settings.GameID,
			LoaderPath:      loaderPath(),
			ProfilePath:     app.resolver.CurrentProfilePath(),
			GameDir:         filepath.Dir(gamePath()),
			ParamTemplate:   app.settings.LaunchParamTemplate,
			ConflictingExes: conflictingExeNames(),
		}

		outcome := launcher.Launch(req, model, params)
		if !outcome.OK {
			return fmt.Errorf("%s", outcome.Reason)
		}
		fmt.Println("launching...")
		return nil
	},
}

func gamePath() string {
	return app.settings.GamePath
}

func loaderPath() string {
	return app.settings.LoaderPath
}

func conflictingExeNames() []string {
	return app.settings.ConflictingExeNames
}
