package mbv4

import (
	"path/filepath"
	"runtime"
	"sort"
)

// defaultGlobs returns the device-path patterns where USB-CDC serial
// devices show up on this platform.
func defaultGlobs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/dev/tty.usbmodem*", "/dev/tty.usbserial*"}
	default:
		return []string{"/dev/ttyACM*", "/dev/ttyUSB*"}
	}
}

// listPorts expands the glob patterns into a sorted, de-duplicated list of
// candidate device paths.
func listPorts(globs []string) []string {
	seen := make(map[string]bool)
	for _, glob := range globs {
		matches, _ := filepath.Glob(glob)
		for _, path := range matches {
			seen[path] = true
		}
	}
	ports := make([]string, 0, len(seen))
	for path := range seen {
		ports = append(ports, path)
	}
	sort.Strings(ports)
	return ports
}
