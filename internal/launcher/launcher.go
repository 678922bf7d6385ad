// Package launcher composes the launch command, resolves the
// launch-parameter template, cleans up conflicting processes, and invokes
// the mod loader, per spec §4.G.
package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/modkit-dev/modkit/internal/foreignproc"
	"github.com/modkit-dev/modkit/internal/modconfig"
	"github.com/modkit-dev/modkit/internal/xerr"
	"github.com/modkit-dev/modkit/internal/xlog"
)

// conflictProcessGracePeriod bounds how long step 4 waits for conflicting
// processes to exit gracefully before force-killing (spec §4.G step 4:
// "short bounded interval").
const conflictProcessGracePeriod = 3 * time.Second

// Request carries every input needed to launch the game through the loader.
type Request struct {
	GamePath        string // resolved game executable path
	GameBaseName    string // expected basename, e.g. "eldenring.exe"
	GameID          string // loader's --game identifier, e.g. "eldenring"
	LoaderPath      string
	ProfilePath     string
	GameDir         string // working directory for the spawned loader
	ParamTemplate   string // optional template with %gameExe% / %essentialsConfig%
	ConflictingExes []string
}

// Launch implements the full procedure of spec §4.G steps 1-5: it verifies
// preconditions, persists the mod config, composes the loader argument
// list, best-effort kills conflicting processes, then spawns the loader
// detached. It returns before the game process exits.
func Launch(req Request, model *modconfig.Model, params LaunchParams) xerr.Outcome {
	if err := verify(req); !err.OK {
		return err
	}

	if err := os.WriteFile(req.ProfilePath, []byte(model.Write()), 0o644); err != nil {
		return xerr.Failf("writing profile: %v", err)
	}

	resolvedTemplate := resolveTemplate(req.ParamTemplate, req.GamePath, req.ProfilePath)
	args := buildArgs(req, params, resolvedTemplate)

	killConflictingProcesses(req.ConflictingExes)

	if err := spawnDetached(req.LoaderPath, args, req.GameDir); err != nil {
		return xerr.Failf("spawning loader: %v", err)
	}

	return xerr.Ok()
}

// verify implements spec §4.G step 1 and §8 property 10: the game
// executable must exist and match its expected basename, and the loader
// must exist, all before any process is spawned.
func verify(req Request) xerr.Outcome {
	info, err := os.Stat(req.GamePath)
	if err != nil || info.IsDir() {
		return xerr.Fail("game executable not found")
	}
	if !strings.EqualFold(filepath.Base(req.GamePath), req.GameBaseName) {
		return xerr.Fail("game executable has unexpected name")
	}
	if _, err := os.Stat(req.LoaderPath); err != nil {
		return xerr.Fail("loader executable not found")
	}
	return xerr.Ok()
}

// resolveTemplate substitutes the two named placeholders in the optional
// launch-parameter template.
func resolveTemplate(template, gameExe, profilePath string) string {
	if template == "" {
		return ""
	}
	r := strings.NewReplacer(
		"%gameExe%", gameExe,
		"%essentialsConfig%", profilePath,
	)
	return r.Replace(template)
}

// buildArgs composes the CLI surface of spec §6: `<loader> launch --exe
// "<game>" [flags…] --game <id> -p "<profile>"`.
func buildArgs(req Request, params LaunchParams, resolvedTemplate string) []string {
	args := []string{"launch", "--exe", req.GamePath}
	args = append(args, params.Flags()...)
	if resolvedTemplate != "" {
		args = append(args, strings.Fields(resolvedTemplate)...)
	}
	args = append(args, "--game", req.GameID)
	args = append(args, "-p", req.ProfilePath)
	return args
}

// killConflictingProcesses implements spec §4.G step 4: best-effort kill
// by name, bounded wait, then force-kill remaining. Cleanup errors never
// fail the launch.
func killConflictingProcesses(exeNames []string) {
	for _, name := range exeNames {
		foreignproc.SweepByName(name, conflictProcessGracePeriod)
	}
}

// spawnDetached starts the loader as a detached process with gameDir as its
// working directory, releasing it so it survives this process exiting
// (spec §4.G step 5). Grounded on the teacher's startNodeLocal
// (pkg/newtlab/qemu.go), which uses SysProcAttr{Setpgid: true} plus
// Process.Release for the same "outlives the launching process" contract.
func spawnDetached(loaderPath string, args []string, workDir string) error {
	cmd := exec.Command(loaderPath, args...)
	cmd.Dir = workDir
	setDetachAttrPlatform(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launcher: starting loader: %w", err)
	}

	pid := cmd.Process.Pid
	go func() {
		if err := cmd.Process.Release(); err != nil {
			xlog.WithField("pid", pid).WithField("error", err).Warn("launcher: failed releasing loader process")
		}
	}()
	return nil
}

