package browser

import (
	"os/exec"
	"runtime"

	"gallery-builder/internal/logging"
)

// openCommand returns the platform opener and its leading arguments.
func openCommand(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

// Open asks the desktop environment to open target (a file path or URL).
// Failures are logged at debug level and swallowed.
func Open(target string) {
	name, args := openCommand(runtime.GOOS)
	args = append(args, target)

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		logging.Debug("Failed to open %s with %s: %v", target, name, err)
		return
	}

	// Reap the opener in the background so it does not linger as a
	// zombie when the process keeps running.
	go func() {
		if err := cmd.Wait(); err != nil {
			logging.Debug("Opener %s exited with error: %v", name, err)
		}
	}()
}
