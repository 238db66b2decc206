package winsys

import (
	"context"

	"github.com/pkg/errors"
)

// ErrProcessGone is returned by an Actuator when the target process no
// longer exists. The caller drops the pid rather than treating it as a
// failure.
var ErrProcessGone = errors.New("process no longer exists")

// WindowID identifies a toplevel window as reported by the window system.
type WindowID uint32

// WorkspaceID identifies a workspace. Sway/i3 report names, EWMH reports
// desktop indexes; both are carried as strings.
type WorkspaceID string

// Window is one toplevel window as seen during a single polling cycle.
// Windows are re-read every cycle and never retained across cycles.
type Window struct {
	ID        WindowID
	Workspace WorkspaceID
	PID       int
}

// Inventory enumerates windows and workspace visibility. One query per
// polling cycle; a failure makes the caller skip the whole cycle.
type Inventory interface {
	// ListWindows returns every toplevel window with its workspace and
	// owning pid. Windows without a resolvable pid are omitted.
	ListWindows(ctx context.Context) ([]Window, error)

	// WorkspaceVisibility maps each known workspace to whether it is
	// currently shown on some output. Workspaces absent from the map are
	// hidden. More than one entry may be true on multi-monitor setups.
	WorkspaceVisibility(ctx context.Context) (map[WorkspaceID]bool, error)

	// Name identifies the backend for logging.
	Name() string

	// Close releases any window-system connection.
	Close() error
}

// ProcessTree resolves a pid into its process group from a point-in-time
// snapshot, so enumeration never races with processes forking or exiting.
type ProcessTree interface {
	// Refresh rebuilds the snapshot. Called once per cycle, before any
	// Descendants call for that cycle.
	Refresh() error

	// Descendants returns pid plus every descendant of pid in the current
	// snapshot. An empty slice means the pid is gone.
	Descendants(pid int) []int

	// Comm returns the command name of pid from the current snapshot, or
	// "" if the pid is gone.
	Comm(pid int) string
}

// Actuator delivers the pause/resume primitive to a single pid. Calls are
// independent per pid; partial success across a group is allowed.
type Actuator interface {
	Pause(pid int) error
	Resume(pid int) error
}

// Clipboard reads an identity fingerprint of the current clipboard
// content. The content itself is never retained by the core.
type Clipboard interface {
	Fingerprint(ctx context.Context) ([]byte, error)
}
