//go:build windows

package netoptimizer

import "strconv"

func listInterfacesPlatform() ([]Interface, error) {
	out, err := runTool("netsh", "interface", "ipv4", "show", "interfaces")
	if err != nil {
		return nil, err
	}
	return parseWindowsInterfaces(out), nil
}

// setMetricPlatform runs `netsh` to set an interface's IPv4 metric, with
// this process's own privileges; no elevation is requested.
func setMetricPlatform(name string, metric int) error {
	_, err := runTool("netsh", "interface", "ipv4", "set", "interface", name, "metric="+strconv.Itoa(metric))
	return err
}
