package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/modkit-dev/modkit/internal/modscan"
)

var externalCmd = &cobra.Command{
	Use:   "external",
	Short: "Manage out-of-tree external mod registrations",
	Long: `Register, remove, and comment on external mod packages and native
libraries that live outside the internal mod tree.

Examples:
  modkit external add-package ./MyModPackage
  modkit external add-native ./libs/extra.dll
  modkit external remove MyModPackage
  modkit external comment MyModPackage "co-op essentials"`,
}

var externalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered external packages and natives",
	RunE: func(cmd *cobra.Command, args []string) error {
		packages := app.registry.PackagePaths()
		natives := app.registry.NativePaths()

		if app.jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"packages": packages,
				"natives":  natives,
			})
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tPATH")
		for name, path := range packages {
			fmt.Fprintf(w, "%s\tpackage\t%s\n", name, path)
		}
		for name, path := range natives {
			fmt.Fprintf(w, "%s\tnative\t%s\n", name, path)
		}
		w.Flush()
		return nil
	},
}

var externalAddPackageCmd = &cobra.Command{
	Use:   "add-package <path>",
	Short: "Register an external package folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, outcome := app.registry.AddPackage(args[0])
		app.logAudit("external-registry", "add-package", args[0], outcome.OK, outcome.Reason)
		if !outcome.OK {
			return fmt.Errorf("%s", outcome.Reason)
		}
		fmt.Printf("registered external package %q\n", name)
		return nil
	},
}

var externalAddNativeCmd = &cobra.Command{
	Use:   "add-native <path>",
	Short: "Register an external native library file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		existing, err := internalDLLNames()
		if err != nil {
			return err
		}
		name, outcome := app.registry.AddNative(args[0], existing)
		app.logAudit("external-registry", "add-native", args[0], outcome.OK, outcome.Reason)
		if !outcome.OK {
			return fmt.Errorf("%s", outcome.Reason)
		}
		fmt.Printf("registered external native %q\n", name)
		return nil
	},
}

var externalRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a registered external package or native by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if outcome := app.registry.RemovePackage(args[0]); outcome.OK {
			app.logAudit("external-registry", "remove", args[0], true, "")
			fmt.Printf("removed external package %q\n", args[0])
			return nil
		}
		if outcome := app.registry.RemoveNative(args[0]); outcome.OK {
			app.logAudit("external-registry", "remove", args[0], true, "")
			fmt.Printf("removed external native %q\n", args[0])
			return nil
		}
		return fmt.Errorf("no such external entry: %s", args[0])
	},
}

var externalCommentCmd = &cobra.Command{
	Use:   "comment <name> <text>",
	Short: "Set a user comment on a registered external entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome := app.registry.SetComment(args[0], args[1])
		if !outcome.OK {
			return fmt.Errorf("%s", outcome.Reason)
		}
		return nil
	},
}

func init() {
	externalCmd.AddCommand(externalListCmd, externalAddPackageCmd, externalAddNativeCmd, externalRemoveCmd, externalCommentCmd)
}

// internalDLLNames collects native-library basenames already present in
// the internal mod tree, so add-native can reject a name collision against
// them the same way modregistry.AddNative checks its own map.
func internalDLLNames() (map[string]bool, error) {
	entries, err := modscan.Scan(app.resolver.ModsDir(), nil)
	if err != nil {
		return nil, fmt.Errorf("scanning internal mods: %w", err)
	}
	names := map[string]bool{}
	for _, e := range entries {
		for _, dll := range e.DLLs {
			names[filepath.Base(dll)] = true
		}
	}
	return names, nil
}
