package sway

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/winsuspend/winsuspend/pkg/winsys"
)

const sampleTree = `{
	"id": 1, "type": "root", "nodes": [
		{"id": 2, "type": "output", "name": "eDP-1", "nodes": [
			{"id": 3, "type": "workspace", "name": "1", "nodes": [
				{"id": 10, "type": "con", "name": "editor", "pid": 4242, "nodes": []},
				{"id": 11, "type": "con", "name": "split", "nodes": [
					{"id": 12, "type": "con", "name": "browser", "pid": 5151, "nodes": []}
				]}
			], "floating_nodes": [
				{"id": 13, "type": "floating_con", "name": "dialog", "pid": 6161, "nodes": []}
			]},
			{"id": 4, "type": "workspace", "name": "2", "nodes": [
				{"id": 14, "type": "con", "name": "legacy", "window": 7077, "nodes": []}
			]}
		]}
	]
}`

type fakeResolver map[winsys.WindowID]int

func (f fakeResolver) WindowPID(id winsys.WindowID) (int, bool) {
	pid, ok := f[id]
	return pid, ok
}

func TestCollectWindows(t *testing.T) {
	var root treeNode
	if err := json.Unmarshal([]byte(sampleTree), &root); err != nil {
		t.Fatalf("decode sample tree: %v", err)
	}

	inv := &Inventory{
		command:  "i3-msg",
		resolver: fakeResolver{7077: 8080},
	}

	var windows []winsys.Window
	inv.collect(&root, "", &windows)

	want := []winsys.Window{
		{ID: 10, Workspace: "1", PID: 4242},
		{ID: 12, Workspace: "1", PID: 5151},
		{ID: 13, Workspace: "1", PID: 6161},
		{ID: 7077, Workspace: "2", PID: 8080},
	}
	if diff := cmp.Diff(want, windows); diff != "" {
		t.Errorf("windows mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectSkipsUnresolvedPids(t *testing.T) {
	var root treeNode
	if err := json.Unmarshal([]byte(sampleTree), &root); err != nil {
		t.Fatalf("decode sample tree: %v", err)
	}

	// No resolver: the i3 window on workspace 2 has no pid and is skipped.
	inv := &Inventory{command: "i3-msg"}

	var windows []winsys.Window
	inv.collect(&root, "", &windows)

	for _, w := range windows {
		if w.Workspace == "2" {
			t.Errorf("window %d on workspace 2 collected without a pid", w.ID)
		}
	}
	if len(windows) != 3 {
		t.Errorf("collected %d windows, want 3", len(windows))
	}
}

func TestWorkspaceVisibilityDecoding(t *testing.T) {
	raw := `[
		{"name": "1", "visible": true, "output": "eDP-1"},
		{"name": "2", "visible": false, "output": "eDP-1"},
		{"name": "9", "visible": true, "output": "HDMI-1"}
	]`

	var workspaces []workspaceInfo
	if err := json.Unmarshal([]byte(raw), &workspaces); err != nil {
		t.Fatalf("decode workspaces: %v", err)
	}

	visible := make(map[winsys.WorkspaceID]bool, len(workspaces))
	for _, ws := range workspaces {
		visible[winsys.WorkspaceID(ws.Name)] = ws.Visible
	}

	want := map[winsys.WorkspaceID]bool{"1": true, "2": false, "9": true}
	if diff := cmp.Diff(want, visible); diff != "" {
		t.Errorf("visibility mismatch (-want +got):\n%s", diff)
	}
}
