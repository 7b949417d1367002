package tui

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var errNoURL = errors.New("open: empty url")

// browserCommand picks the launcher for url. $BROWSER wins when set.
func browserCommand(url string) (string, []string) {
	if b := strings.TrimSpace(os.Getenv("BROWSER")); b != "" {
		fields := strings.Fields(b)
		return fields[0], append(fields[1:], url)
	}
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// OpenURL starts the browser on url and returns without waiting for it.
func OpenURL(url string) error {
	if url == "" {
		return errNoURL
	}
	name, args := browserCommand(url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
