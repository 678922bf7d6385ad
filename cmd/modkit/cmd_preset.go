package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/modkit-dev/modkit/internal/jqfilter"
	"github.com/modkit-dev/modkit/internal/launcher"
	"github.com/modkit-dev/modkit/internal/preset"
)

var presetListQuery string

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage self-describing launch presets",
	Long: `Scan, generate, and quick-launch self-describing preset files that
snapshot a loader profile under the preset folder.

Examples:
  modkit preset list
  modkit preset generate --name "PvP Only" pvp.me3
  modkit preset launch pvp.me3`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets and flag any with missing dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := preset.Scan(app.resolver.PresetsDir())
		if err != nil {
			return fmt.Errorf("scanning presets: %w", err)
		}

		if presetListQuery != "" {
			results, err := jqfilter.Apply(presetListQuery, presets)
			if err != nil {
				return fmt.Errorf("applying --query: %w", err)
			}
			return json.NewEncoder(os.Stdout).Encode(results)
		}

		if app.jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(presets)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFILE\tAVAILABLE")
		for _, p := range presets {
			name := p.Meta.Name
			if name == "" {
				name = filepath.Base(p.Path)
			}
			fmt.Fprintf(w, "%s\t%s\t%v\n", name, filepath.Base(p.Path), p.Available)
		}
		w.Flush()
		return nil
	},
}

var (
	presetGenName string
	presetGenDesc string
	presetGenIcon string
)

var presetGenerateCmd = &cobra.Command{
	Use:   "generate <filename>",
	Short: "Generate a preset from the current loader profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := loadCurrentModel()
		if err != nil {
			return err
		}
		destPath := filepath.Join(app.resolver.PresetsDir(), args[0])
		if err := os.MkdirAll(app.resolver.PresetsDir(), 0o755); err != nil {
			return fmt.Errorf("creating presets directory: %w", err)
		}
		meta := preset.Meta{Name: presetGenName, Description: presetGenDesc, Icon: presetGenIcon}
		if err := preset.Generate(destPath, meta, model); err != nil {
			return fmt.Errorf("generating preset: %w", err)
		}
		fmt.Printf("wrote preset %s\n", destPath)
		return nil
	},
}

var presetLaunchCmd = &cobra.Command{
	Use:   "launch <filename>",
	Short: "Quick-launch directly from a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		presetPath := filepath.Join(app.resolver.PresetsDir(), args[0])
		if _, err := preset.Parse(presetPath); err != nil {
			return fmt.Errorf("reading preset: %w", err)
		}

		params, err := launcher.LoadLaunchParams(filepath.Join(app.resolver.ESRDir(), "launch_params.json"))
		if err != nil {
			return fmt.Errorf("reading launch parameters: %w", err)
		}

		req := launcher.QuickLaunchRequest{
			GamePath:        gamePath(),
			GameID:          app.settings.GameID,
			LoaderPath:      loaderPath(),
			ProfilePath:     presetPath,
			GameDir:         filepath.Dir(gamePath()),
			ScriptDir:       app.resolver.ESRDir(),
			ConflictingExes: conflictingExeNames(),
		}
		outcome := launcher.QuickLaunch(req, params)
		if !outcome.OK {
			return fmt.Errorf("%s", outcome.Reason)
		}
		fmt.Println("launching...")
		return nil
	},
}

func init() {
	presetGenerateCmd.Flags().StringVar(&presetGenName, "name", "", "Display name embedded in the preset")
	presetGenerateCmd.Flags().StringVar(&presetGenDesc, "description", "", "Description embedded in the preset")
	presetGenerateCmd.Flags().StringVar(&presetGenIcon, "icon", "", "Icon path embedded in the preset")
	presetListCmd.Flags().StringVar(&presetListQuery, "query", "", "Filter/reshape the listed presets with a jq expression")

	presetCmd.AddCommand(presetListCmd, presetGenerateCmd, presetLaunchCmd)
}
