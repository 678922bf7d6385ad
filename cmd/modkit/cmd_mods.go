package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/modkit-dev/modkit/internal/modconfig"
	"github.com/modkit-dev/modkit/internal/modscan"
)

var modsCmd = &cobra.Command{
	Use:   "mods",
	Short: "Scan and manage the mod loadout",
	Long: `Scan the mod directory and manage which entries are enabled in the
current loader profile.

Examples:
  modkit mods scan
  modkit mods list
  modkit mods enable nrsc.dll
  modkit mods disable MyModPackage
  modkit mods force-last MyModPackage`,
}

var modsScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rescan the mod directory and print classified entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := modscan.Scan(app.resolver.ModsDir(), app.registry)
		if err != nil {
			return fmt.Errorf("scanning mods: %w", err)
		}
		return printJSONOrTable(app.jsonOutput,
			func() error { return json.NewEncoder(os.Stdout).Encode(entries) },
			func() {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tKIND\tDLLS")
				fmt.Fprintln(w, "----\t----\t----")
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%s\t%d\n", e.Name, e.Kind, len(e.DLLs))
				}
				w.Flush()
			})
	},
}

var modsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current loader profile's enabled entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := loadCurrentModel()
		if err != nil {
			return err
		}

		if app.jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(model)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PACKAGES")
		for _, p := range model.Packages {
			fmt.Fprintf(w, "  %s\t%s\n", p.ID, enabledStr(p.Enabled))
		}
		fmt.Fprintln(w, "NATIVES")
		for _, n := range model.Natives {
			fmt.Fprintf(w, "  %s\t%s\n", n.Path, enabledStr(n.Enabled))
		}
		w.Flush()
		return nil
	},
}

var modsEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a package or native by id/path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleEntry(args[0], true)
	},
}

var modsDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a package or native by id/path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleEntry(args[0], false)
	},
}

var modsForceLastCmd = &cobra.Command{
	Use:   "force-last <package-id>",
	Short: "Force a package to load after every other enabled package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := loadCurrentModel()
		if err != nil {
			return err
		}
		if !model.SetForceLoadLast(args[0]) {
			return fmt.Errorf("no such package: %s", args[0])
		}
		return saveCurrentModel(model)
	},
}

func init() {
	modsCmd.AddCommand(modsScanCmd, modsListCmd, modsEnableCmd, modsDisableCmd, modsForceLastCmd)
}

func loadCurrentModel() (*modconfig.Model, error) {
	data, err := os.ReadFile(app.resolver.CurrentProfilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return modconfig.New(), nil
		}
		return nil, fmt.Errorf("reading current profile: %w", err)
	}
	return modconfig.Read(string(data)), nil
}

func saveCurrentModel(model *modconfig.Model) error {
	return os.WriteFile(app.resolver.CurrentProfilePath(), []byte(model.Write()), 0o644)
}

// toggleEntry sets whichever of the model's package/native lists id
// matches to want, adding an entry for it (enabled per want) if it isn't
// present yet. Entries read from the current profile are all enabled, since
// the profile only ever lists enabled entries, so enabling one leaves it on.
func toggleEntry(id string, want bool) error {
	model, err := loadCurrentModel()
	if err != nil {
		return err
	}

	switch {
	case model.TogglePackage(id):
		if want {
			model.TogglePackage(id)
		}
	case model.ToggleNative(id):
		if want {
			model.ToggleNative(id)
		}
	default:
		entries, scanErr := modscan.Scan(app.resolver.ModsDir(), app.registry)
		if scanErr != nil {
			return fmt.Errorf("no such entry: %s", id)
		}
		found := false
		for _, e := range entries {
			if e.Name != id {
				continue
			}
			found = true
			if len(e.DLLs) > 0 {
				model.AddNative(e.DLLs[0], want)
			} else {
				model.AddPackage(e.Name, e.Path, want)
			}
		}
		if !found {
			return fmt.Errorf("no such entry: %s", id)
		}
	}

	return saveCurrentModel(model)
}

func enabledStr(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
