//go:build !windows

package netoptimizer

import "strconv"

func listInterfacesPlatform() ([]Interface, error) {
	out, err := runTool("ip", "-4", "addr")
	if err != nil {
		return nil, err
	}
	return parseUnixInterfaces(out), nil
}

// setMetricPlatform runs `ip link set <name> metric <n>` with this
// process's own privileges; no elevation is requested.
func setMetricPlatform(name string, metric int) error {
	_, err := runTool("ip", "link", "set", name, "metric", strconv.Itoa(metric))
	return err
}
