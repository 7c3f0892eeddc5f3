// Package clipboard copies parameter text to the system clipboard. It
// auto-detects remote/tmux sessions and uses OSC 52 escape sequences when
// appropriate, falling back to native clipboard tools otherwise.
package clipboard

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	atotto "github.com/atotto/clipboard"
)

// Clipboard defines the interface for clipboard operations.
// Use System for production and a fake in tests.
type Clipboard interface {
	Copy(text string) error
}

// System implements Clipboard using the terminal and OS clipboard.
type System struct{}

// Copy copies text to the system clipboard.
// Priority:
// 1. Local tmux session → native tools (pbcopy/xclip) directly
// 2. Remote SSH session or GNU screen → OSC 52 escape sequences
// 3. Otherwise native tools, then the portable library as a last resort
func (System) Copy(text string) error {
	if isLocalTmux() {
		return copyViaNative(text)
	}

	if isRemoteSession() || isGNUScreen() {
		return copyViaOSC52(text)
	}

	if err := copyViaNative(text); err != nil {
		return atotto.WriteAll(text)
	}
	return nil
}

// isLocalTmux returns true if running in tmux without SSH.
func isLocalTmux() bool {
	return os.Getenv("TMUX") != "" && !isRemoteSession()
}

// isRemoteSession returns true if running over SSH.
func isRemoteSession() bool {
	return os.Getenv("SSH_TTY") != "" ||
		os.Getenv("SSH_CLIENT") != "" ||
		os.Getenv("SSH_CONNECTION") != ""
}

// isGNUScreen returns true if running in GNU screen.
func isGNUScreen() bool {
	return os.Getenv("STY") != ""
}

// copyViaOSC52 copies text using OSC 52 escape sequences.
// When inside tmux, it wraps the sequence in a DCS passthrough.
func copyViaOSC52(text string) (err error) {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))

	var seq string
	if os.Getenv("TMUX") != "" {
		// tmux passthrough: wrap OSC 52 in DCS sequence
		// \x1bP starts DCS, tmux; identifies passthrough
		// Inner \x1b is doubled to \x1b\x1b
		// \x1b\\ ends DCS
		seq = fmt.Sprintf("\x1bPtmux;\x1b\x1b]52;c;%s\x07\x1b\\", encoded)
	} else {
		// Direct OSC 52
		seq = fmt.Sprintf("\x1b]52;c;%s\x07", encoded)
	}

	// Write to /dev/tty to bypass any stdout redirection
	// and work correctly with Bubble Tea's alt-screen mode
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open /dev/tty: %w", err)
	}
	defer func() {
		if closeErr := tty.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = tty.WriteString(seq)
	return err
}

// copyViaNative copies text using native clipboard tools.
func copyViaNative(text string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "linux":
		cmd = exec.Command("xclip", "-selection", "clipboard")
	default:
		cmd = exec.Command("xclip", "-selection", "clipboard")
	}

	pipe, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	if _, err := pipe.Write([]byte(text)); err != nil {
		return err
	}

	if err := pipe.Close(); err != nil {
		return err
	}

	return cmd.Wait()
}
