package launcher

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/modkit-dev/modkit/internal/xerr"
)

// QuickLaunchRequest launches directly from a preset's profile path,
// skipping the mod-config verify/persist steps (spec §4.G: "Quick-launch
// preset variant").
type QuickLaunchRequest struct {
	GamePath        string
	GameID          string // loader's --game identifier, e.g. "eldenring"
	LoaderPath      string
	ProfilePath     string
	GameDir         string
	ScriptDir       string // where the detached launch script is written
	ConflictingExes []string
}

// QuickLaunch writes a short shell script invoking the loader and runs
// that script detached, so the app can exit without orphaning the loader
// (spec §4.G). Steps 1-3 of the full launch are replaced by using the
// preset's own profile path directly; steps 4-5 are unchanged.
func QuickLaunch(req QuickLaunchRequest, params LaunchParams) xerr.Outcome {
	if _, err := os.Stat(req.LoaderPath); err != nil {
		return xerr.Fail("loader executable not found")
	}
	if _, err := os.Stat(req.ProfilePath); err != nil {
		return xerr.Fail("preset profile not found")
	}

	args := buildArgs(Request{
		GamePath:    req.GamePath,
		GameID:      req.GameID,
		LoaderPath:  req.LoaderPath,
		ProfilePath: req.ProfilePath,
	}, params, "")

	scriptPath, err := writeLaunchScript(req.ScriptDir, req.LoaderPath, args)
	if err != nil {
		return xerr.Failf("writing launch script: %v", err)
	}

	killConflictingProcesses(req.ConflictingExes)

	if err := spawnDetached(scriptPath, nil, req.GameDir); err != nil {
		return xerr.Failf("spawning launch script: %v", err)
	}
	return xerr.Ok()
}

// writeLaunchScript emits a small shell script that execs the loader with
// its arguments, so the supervising script process—not this app—owns the
// loader's lifetime once spawned.
func writeLaunchScript(dir, loaderPath string, args []string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	if runtime.GOOS == "windows" {
		path := filepath.Join(dir, "quicklaunch.bat")
		content := "@echo off\r\n\"" + loaderPath + "\""
		for _, a := range args {
			content += " \"" + a + "\""
		}
		content += "\r\n"
		if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}

	path := filepath.Join(dir, "quicklaunch.sh")
	content := "#!/bin/sh\nexec " + shellQuote(loaderPath)
	for _, a := range args {
		content += " " + shellQuote(a)
	}
	content += "\n"
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// shellQuote wraps s in single quotes, escaping any embedded single quote
// as '\'' so the argument survives /bin/sh word splitting intact.
func shellQuote(s string) string {
	out := make([]rune, 0, len(s)+2)
	out = append(out, '\'')
	for _, r := range s {
		if r == '\'' {
			out = append(out, '\'', '\\', '\'', '\'')
			continue
		}
		out = append(out, r)
	}
	out = append(out, '\'')
	return string(out)
}
