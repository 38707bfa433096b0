package utils

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

func runningInWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	return strings.Contains(strings.ToLower(string(data)), "wsl")
}

// OpenBrowser launches the system browser at the given URL. Used to hand
// the SSO login page off to the desktop while the terminal waits for the
// callback code.
func OpenBrowser(url string) error {
	switch runtime.GOOS {
	case "linux":
		if runningInWSL() {
			// WSL has no native browser, delegate to Windows
			return exec.Command("cmd.exe", "/c", "start", url).Start()
		}

		for _, name := range []string{"xdg-open", "sensible-browser", "x-www-browser", "gnome-open", "kde-open"} {
			if _, err := exec.LookPath(name); err == nil {
				return exec.Command(name, url).Start()
			}
		}

		return fmt.Errorf("no browser opener found")
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported platform")
	}
}
