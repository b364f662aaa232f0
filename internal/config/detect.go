package config

import (
	"os"
	"path/filepath"
)

// gpioMarkers are paths whose presence under a root filesystem means the
// host exposes GPIO lines to userspace.
var gpioMarkers = []string{
	"dev/gpiochip0",
	"sys/class/gpio",
}

// DetectBackend returns BackendPeriph when the filesystem at root exposes
// GPIO (character device or sysfs class), and BackendSim otherwise.
func DetectBackend(root string) string {
	for _, m := range gpioMarkers {
		if _, err := os.Stat(filepath.Join(root, m)); err == nil {
			return BackendPeriph
		}
	}
	return BackendSim
}

// ResolveBackend replaces an auto backend with the result of DetectBackend.
func (c *Config) ResolveBackend(root string) {
	if c.Board.Backend == BackendAuto {
		c.Board.Backend = DetectBackend(root)
	}
}
