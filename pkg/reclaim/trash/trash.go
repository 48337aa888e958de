// Package trash moves files and directories to the system recycle
// bin. Unlike a plain delete, trashed entries can be restored by the
// user; a failure to trash is reported to the caller rather than
// silently downgraded to permanent deletion, since the caller chose
// the reversible action.
package trash

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// commandTimeout is the maximum time to wait for trash commands.
const commandTimeout = 30 * time.Second

// ErrNoTrashTool indicates no system trash mechanism is available.
var ErrNoTrashTool = errors.New("no system trash tool available")

// MoveToTrash moves a file or directory to the system trash.
// On macOS it uses AppleScript so Finder's "Put Back" works; on Linux
// it tries gio, then trash-put. Returns ErrNoTrashTool when no
// mechanism exists on this platform.
func MoveToTrash(path string) error {
	// Verify the path exists before attempting to trash it.
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot trash %q: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	switch runtime.GOOS {
	case "darwin":
		return moveToTrashMacOS(absPath)
	case "linux":
		return moveToTrashLinux(absPath)
	default:
		return fmt.Errorf("trash %q: %w", absPath, ErrNoTrashTool)
	}
}

// moveToTrashMacOS moves a file to Trash on macOS using AppleScript.
func moveToTrashMacOS(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("trash %q via Finder: %w", path, err)
	}
	return nil
}

// moveToTrashLinux moves a file to trash on Linux using available
// tools.
func moveToTrashLinux(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	// Try gio first (GNOME/GTK desktop environments).
	if gioPath, err := exec.LookPath("gio"); err == nil {
		cmd := exec.CommandContext(ctx, gioPath, "trash", path)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}

	// Try trash-cli (cross-desktop, XDG compliant).
	if trashPath, err := exec.LookPath("trash-put"); err == nil {
		cmd := exec.CommandContext(ctx, trashPath, path)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}

	return fmt.Errorf("trash %q: %w", path, ErrNoTrashTool)
}
