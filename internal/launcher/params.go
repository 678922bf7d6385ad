package launcher

import (
	"encoding/json"
	"os"
)

// LaunchParams mirrors the small JSON sidecar of spec §6: boolean toggles
// for known launch flags. SkipSteamInit is always forced true on load.
type LaunchParams struct {
	NoBootBoost   bool `json:"no_boot_boost"`
	ShowLogos     bool `json:"show_logos"`
	SkipSteamInit bool `json:"skip_steam_init"`
	Online        bool `json:"online"`
	DisableArxan  bool `json:"disable_arxan"`
	Diagnostics   bool `json:"diagnostics"`
}

// DefaultLaunchParams returns the original_source-derived default sidecar
// contents (SPEC_FULL.md §3 supplement), with SkipSteamInit already true.
func DefaultLaunchParams() LaunchParams {
	return LaunchParams{
		ShowLogos:     true,
		SkipSteamInit: true,
		Online:        false,
	}
}

// LoadLaunchParams reads the sidecar from path, falling back to defaults if
// it doesn't exist.
func LoadLaunchParams(path string) (LaunchParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultLaunchParams(), nil
		}
		return LaunchParams{}, err
	}
	var p LaunchParams
	if err := json.Unmarshal(data, &p); err != nil {
		return LaunchParams{}, err
	}
	p.SkipSteamInit = true
	return p, nil
}

// Flags composes the loader argument list from the sidecar flags.
func (p LaunchParams) Flags() []string {
	var flags []string
	if p.NoBootBoost {
		flags = append(flags, "--nobootboost")
	}
	if p.ShowLogos {
		flags = append(flags, "--showlogos")
	}
	if p.SkipSteamInit {
		flags = append(flags, "--skipsteaminit")
	}
	if p.Online {
		flags = append(flags, "--online")
	}
	if p.DisableArxan {
		flags = append(flags, "--disablearxan")
	}
	if p.Diagnostics {
		flags = append(flags, "--diag")
	}
	return flags
}
