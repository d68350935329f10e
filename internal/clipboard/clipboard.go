// Package clipboard copies translations to the system clipboard using the
// platform's command line tools.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrNoUtility is returned when no clipboard tool is installed
var ErrNoUtility = errors.New("clipboard utilities not found")

// Clipboard copies text with pbcopy, xclip or wl-copy
type Clipboard struct {
	goos string
}

// New builds the clipboard helper for the running platform
func New() *Clipboard {
	return &Clipboard{goos: runtime.GOOS}
}

// Enabled reports whether the platform has a supported clipboard tool family
func (c *Clipboard) Enabled() bool {
	switch c.goos {
	case "darwin", "linux":
		return true
	default:
		return false
	}
}

// Copy copies text to the system clipboard
func (c *Clipboard) Copy(text string) error {
	cmd, err := c.command()
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd.Stdin = bytes.NewBufferString(text)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", cmd.Path, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

func (c *Clipboard) command() (*exec.Cmd, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("clipboard not supported on %s", c.goos)
	}

	if c.goos == "darwin" {
		return exec.Command("pbcopy"), nil
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		return exec.Command("xclip", "-selection", "clipboard"), nil
	}
	if _, err := exec.LookPath("wl-copy"); err == nil {
		return exec.Command("wl-copy"), nil
	}
	return nil, ErrNoUtility
}
