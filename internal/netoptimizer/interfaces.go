package netoptimizer

import (
	"bufio"
	"os/exec"
	"strconv"
	"strings"
)

// Interface is one row of the platform's IPv4 interface table.
type Interface struct {
	Name      string
	Metric    int
	Connected bool
}

// adapterKeywords scores candidate interface names, ordered by priority
// (spec §4.J: "scoring interface names against an ordered keyword list").
var adapterKeywords = []string{"easytier", "tap", "tun"}

// listInterfaces shells out to the platform tool and parses its output
// with a tolerant, header-detecting scanner (spec §4.J), grounded on
// pkg/device/configdb.go's parseEntry-style tolerant field scanner.
func listInterfaces() ([]Interface, error) {
	return listInterfacesPlatform()
}

// parseWindowsInterfaces parses `netsh interface ipv4 show interfaces`
// output. Columns are whitespace-separated with a header row; the last
// column is the interface name, which may itself contain spaces, so it is
// reassembled from the remaining fields after the four known numeric/
// state columns.
func parseWindowsInterfaces(output string) []Interface {
	var out []Interface
	scanner := bufio.NewScanner(strings.NewReader(output))
	headerSeen := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !headerSeen {
			if strings.Contains(strings.ToLower(line), "idx") && strings.Contains(strings.ToLower(line), "met") {
				headerSeen = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		metric, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		state := strings.ToLower(fields[3])
		name := strings.Join(fields[4:], " ")
		out = append(out, Interface{
			Name:      name,
			Metric:    metric,
			Connected: state == "connected" || state == "connecté",
		})
	}
	return out
}

// parseUnixInterfaces parses `ip -4 addr` output, pairing each numbered
// interface block with a synthetic metric of 0 (Unix's `ip` tool reports
// routing metrics separately; the adapter is considered connected when its
// header line reports state UP or it carries an inet address).
func parseUnixInterfaces(output string) []Interface {
	var out []Interface
	var current *Interface
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			fields := strings.Fields(trimmed)
			if len(fields) < 2 {
				continue
			}
			name := strings.TrimSuffix(fields[1], ":")
			iface := Interface{Name: name, Connected: strings.Contains(trimmed, "state UP")}
			out = append(out, iface)
			current = &out[len(out)-1]
			continue
		}
		if current != nil && strings.HasPrefix(trimmed, "inet ") {
			current.Connected = true
		}
	}
	return out
}

// runTool runs name with args and returns combined stdout, tolerating a
// non-zero exit since some platform tools still emit usable output on
// partial failure.
func runTool(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil && len(out) == 0 {
		return "", err
	}
	return string(out), nil
}

// scoreAdapter returns the keyword rank of name (lower is better), or -1
// if no keyword matches.
func scoreAdapter(name string) int {
	lower := strings.ToLower(name)
	for i, kw := range adapterKeywords {
		if strings.Contains(lower, kw) {
			return i
		}
	}
	return -1
}

// findOverlayAdapter locates the best-scoring connected interface.
func findOverlayAdapter(ifaces []Interface) (Interface, bool) {
	bestScore := -1
	var best Interface
	found := false
	for _, iface := range ifaces {
		if !iface.Connected {
			continue
		}
		score := scoreAdapter(iface.Name)
		if score < 0 {
			continue
		}
		if !found || score < bestScore {
			best = iface
			bestScore = score
			found = true
		}
	}
	return best, found
}
