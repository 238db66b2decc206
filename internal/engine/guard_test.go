package engine

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/winsuspend/winsuspend/pkg/winsys"
)

// A clipboard change detected while the group is pending defers the stop
// by exactly one cycle, then the stop commits.
func TestClipboardVetoDefersStopOnce(t *testing.T) {
	h := newHarness(t, Options{DebounceCycles: 3, Clipboard: &fakeClipboard{fp: []byte("a")}})
	h.addGroup(100, "browser")
	h.setWindow(1, "2", 100)
	h.inv.visible = map[winsys.WorkspaceID]bool{"2": true}
	h.cycle(t) // cycle 0: visible, fingerprint primed

	h.inv.visible = map[winsys.WorkspaceID]bool{"1": true}
	h.cycle(t) // cycle 1: hidden, pending
	h.clip.fp = []byte("b")
	h.cycle(t) // cycle 2: change detected while pending, veto armed
	h.cycle(t) // cycle 3: debounce elapsed, veto consumed, stop deferred
	if got := h.stateOf(t, 100); got != StatePendingStop {
		t.Fatalf("cycle 3: state = %v, want pending_stop (vetoed)", got)
	}
	if len(h.act.calls) != 0 {
		t.Fatalf("cycle 3: signals sent = %v, want none", h.act.calls)
	}

	h.cycle(t) // cycle 4: no new change, stop commits
	if got := h.stateOf(t, 100); got != StateStopped {
		t.Fatalf("cycle 4: state = %v, want stopped", got)
	}
}

// A change during the group's last visible cycle still arms the veto for
// the stop that follows the hide.
func TestClipboardChangeWhileVisibleArmsVeto(t *testing.T) {
	h := newHarness(t, Options{DebounceCycles: 2, Clipboard: &fakeClipboard{fp: []byte("a")}})
	h.addGroup(100, "browser")
	h.setWindow(1, "2", 100)
	h.inv.visible = map[winsys.WorkspaceID]bool{"2": true}
	h.cycle(t)
	h.clip.fp = []byte("b")
	h.cycle(t) // change while visible

	h.inv.visible = map[winsys.WorkspaceID]bool{"1": true}
	h.cycle(t)
	h.cycle(t) // debounce elapsed, but veto defers
	if got := h.stateOf(t, 100); got != StatePendingStop {
		t.Fatalf("state = %v, want pending_stop (vetoed)", got)
	}
	h.cycle(t)
	if got := h.stateOf(t, 100); got != StateStopped {
		t.Fatalf("state = %v, want stopped after one-cycle deferral", got)
	}
}

// Once consumed, the same change cannot veto a later stop attempt; only a
// fresh change re-arms the guard.
func TestClipboardVetoIsOneShot(t *testing.T) {
	h := newHarness(t, Options{DebounceCycles: 1, Clipboard: &fakeClipboard{fp: []byte("a")}})
	h.addGroup(100, "browser")
	h.setWindow(1, "2", 100)
	h.inv.visible = map[winsys.WorkspaceID]bool{"2": true}
	h.cycle(t)
	h.clip.fp = []byte("b")
	h.cycle(t) // change while visible, veto armed

	h.inv.visible = map[winsys.WorkspaceID]bool{"1": true}
	h.cycle(t) // stop vetoed, consumed
	if got := h.stateOf(t, 100); got != StatePendingStop {
		t.Fatalf("state = %v, want pending_stop (vetoed)", got)
	}
	h.cycle(t) // consumed veto no longer blocks
	if got := h.stateOf(t, 100); got != StateStopped {
		t.Fatalf("state = %v, want stopped", got)
	}

	// A fresh change can defer the next pending stop again.
	h.inv.visible = map[winsys.WorkspaceID]bool{"2": true}
	h.cycle(t) // resumed
	h.clip.fp = []byte("c")
	h.cycle(t)
	h.inv.visible = map[winsys.WorkspaceID]bool{"1": true}
	h.cycle(t)
	if got := h.stateOf(t, 100); got != StatePendingStop {
		t.Fatalf("state = %v, want pending_stop (new change vetoed)", got)
	}
}

// A visible cycle without clipboard activity clears a previously armed
// veto: the guard reflects the most recent visible cycle only.
func TestQuietVisibleCycleClearsVeto(t *testing.T) {
	h := newHarness(t, Options{DebounceCycles: 1, Clipboard: &fakeClipboard{fp: []byte("a")}})
	h.addGroup(100, "browser")
	h.setWindow(1, "2", 100)
	h.inv.visible = map[winsys.WorkspaceID]bool{"2": true}
	h.cycle(t)
	h.clip.fp = []byte("b")
	h.cycle(t) // change while visible
	h.cycle(t) // quiet visible cycle supersedes it

	h.inv.visible = map[winsys.WorkspaceID]bool{"1": true}
	h.cycle(t)
	if got := h.stateOf(t, 100); got != StateStopped {
		t.Fatalf("state = %v, want stopped (no veto)", got)
	}
}

// A failed clipboard read skips the whole cycle.
func TestClipboardFailureSkipsCycle(t *testing.T) {
	clip := &fakeClipboard{fp: []byte("a")}
	h := newHarness(t, Options{DebounceCycles: 1, Clipboard: clip})
	h.addGroup(100, "browser")
	h.setWindow(1, "2", 100)
	h.inv.visible = map[winsys.WorkspaceID]bool{"2": true}
	h.cycle(t)

	clip.err = errors.New("xclip timed out")
	h.inv.visible = map[winsys.WorkspaceID]bool{"1": true}
	if _, err := h.eng.Cycle(context.Background()); err == nil {
		t.Fatal("Cycle() succeeded, want error")
	}
	if got := h.stateOf(t, 100); got != StateRunning {
		t.Errorf("state after failed cycle = %v, want running (unchanged)", got)
	}
	if len(h.act.calls) != 0 {
		t.Errorf("signals sent = %v, want none", h.act.calls)
	}
}

// Without a clipboard collaborator the guard is inert and stops proceed
// purely on debounce.
func TestGuardInertWhenDisabled(t *testing.T) {
	h := newHarness(t, Options{DebounceCycles: 1})
	h.addGroup(100, "browser")
	h.setWindow(1, "2", 100)
	h.inv.visible = map[winsys.WorkspaceID]bool{"2": true}
	h.cycle(t)

	h.inv.visible = map[winsys.WorkspaceID]bool{"1": true}
	h.cycle(t)
	if got := h.stateOf(t, 100); got != StateStopped {
		t.Fatalf("state = %v, want stopped with guard disabled", got)
	}
}
