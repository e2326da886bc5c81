//go:build headless

// debug_overlay_headless.go - Stub monitor window for headless builds (testing)

package main

import "errors"

// RunMonitorWindow is unavailable in headless builds.
func RunMonitorWindow(monitor *MachineMonitor) error {
	return errors.New("monitor window not available in headless build")
}
