// Package sway enumerates windows and workspaces through the i3-compatible
// IPC of sway and i3, which reports true per-output workspace visibility
// on multi-monitor setups.
package sway

import (
	"context"
	"encoding/json"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/winsuspend/winsuspend/pkg/winsys"
)

// PIDResolver maps an X window id to its owning pid. i3's IPC tree carries
// X window ids but no pids; sway reports pids directly.
type PIDResolver interface {
	WindowPID(id winsys.WindowID) (int, bool)
}

type Inventory struct {
	command  string
	resolver PIDResolver
	closer   func() error
}

// New picks swaymsg or i3-msg, whichever is installed. resolver may be nil
// (sway); on i3 it must be provided or every window is skipped.
func New(resolver PIDResolver, closer func() error) (*Inventory, error) {
	for _, command := range []string{"swaymsg", "i3-msg"} {
		if _, err := exec.LookPath(command); err == nil {
			return &Inventory{command: command, resolver: resolver, closer: closer}, nil
		}
	}
	return nil, errors.New("neither swaymsg nor i3-msg found in PATH")
}

func (inv *Inventory) Name() string { return inv.command }

func (inv *Inventory) Close() error {
	if inv.closer != nil {
		return inv.closer()
	}
	return nil
}

// treeNode is the subset of the get_tree reply the inventory needs.
type treeNode struct {
	ID            int64      `json:"id"`
	Type          string     `json:"type"`
	Name          string     `json:"name"`
	Window        uint32     `json:"window"` // X window id, i3 only
	PID           int        `json:"pid"`    // sway only
	Nodes         []treeNode `json:"nodes"`
	FloatingNodes []treeNode `json:"floating_nodes"`
}

type workspaceInfo struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Output  string `json:"output"`
}

func (inv *Inventory) ListWindows(ctx context.Context) ([]winsys.Window, error) {
	out, err := inv.run(ctx, "get_tree")
	if err != nil {
		return nil, err
	}

	var root treeNode
	if err := json.Unmarshal(out, &root); err != nil {
		return nil, errors.Wrapf(err, "decode %s tree", inv.command)
	}

	var windows []winsys.Window
	inv.collect(&root, "", &windows)
	return windows, nil
}

func (inv *Inventory) collect(node *treeNode, workspace string, windows *[]winsys.Window) {
	if node.Type == "workspace" {
		workspace = node.Name
	}

	if workspace != "" && len(node.Nodes) == 0 && len(node.FloatingNodes) == 0 {
		if w, ok := inv.window(node, workspace); ok {
			*windows = append(*windows, w)
		}
		return
	}

	for i := range node.Nodes {
		inv.collect(&node.Nodes[i], workspace, windows)
	}
	for i := range node.FloatingNodes {
		inv.collect(&node.FloatingNodes[i], workspace, windows)
	}
}

func (inv *Inventory) window(node *treeNode, workspace string) (winsys.Window, bool) {
	id := winsys.WindowID(node.Window)
	if id == 0 {
		// Wayland-native window: no X id, fall back to the node id.
		id = winsys.WindowID(node.ID)
	}

	pid := node.PID
	if pid == 0 && node.Window != 0 && inv.resolver != nil {
		pid, _ = inv.resolver.WindowPID(winsys.WindowID(node.Window))
	}
	if pid == 0 {
		return winsys.Window{}, false
	}

	return winsys.Window{
		ID:        id,
		Workspace: winsys.WorkspaceID(workspace),
		PID:       pid,
	}, true
}

func (inv *Inventory) WorkspaceVisibility(ctx context.Context) (map[winsys.WorkspaceID]bool, error) {
	out, err := inv.run(ctx, "get_workspaces")
	if err != nil {
		return nil, err
	}

	var workspaces []workspaceInfo
	if err := json.Unmarshal(out, &workspaces); err != nil {
		return nil, errors.Wrapf(err, "decode %s workspaces", inv.command)
	}

	visible := make(map[winsys.WorkspaceID]bool, len(workspaces))
	for _, ws := range workspaces {
		visible[winsys.WorkspaceID(ws.Name)] = ws.Visible
	}
	return visible, nil
}

func (inv *Inventory) run(ctx context.Context, messageType string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, inv.command, "-t", messageType).Output()
	if err != nil {
		return nil, errors.Wrapf(err, "%s -t %s", inv.command, messageType)
	}
	return out, nil
}
