package engine

import (
	"time"

	"github.com/winsuspend/winsuspend/pkg/winsys"
)

// Group is one process group: a root pid, the live pid set resolved from
// the process tree, and the windows attributed to it this cycle.
type Group struct {
	Root  int
	Name  string
	State GroupState

	pids    []int
	pidSet  map[int]struct{}
	windows map[winsys.WindowID]struct{}

	visibleNow  bool
	prevVisible bool

	// Consecutive hidden cycles while in StatePendingStop. Entering the
	// state counts as 1.
	hiddenCycles int

	// Clipboard guard bookkeeping. vetoArmed means the fingerprint changed
	// during the most recent cycle the group was a candidate owner;
	// vetoConsumed means that veto already deferred a stop once.
	vetoArmed    bool
	vetoConsumed bool

	stoppedAt time.Time

	// Pids whose last pause/resume signal failed for a reason other than
	// the process being gone. Retried on later cycles.
	retry map[int]struct{}

	// Consecutive cycles with no windows and no live pids.
	emptyCycles int
}

func newGroup(root int, name string, pids []int) *Group {
	g := &Group{
		Root:    root,
		Name:    name,
		State:   StateRunning,
		windows: make(map[winsys.WindowID]struct{}),
	}
	g.setPids(pids)
	return g
}

func (g *Group) setPids(pids []int) {
	g.pids = pids
	g.pidSet = make(map[int]struct{}, len(pids))
	for _, pid := range pids {
		g.pidSet[pid] = struct{}{}
	}
}

// setPidsKeepRetry replaces the live pid set from a fresh snapshot,
// pruning retry entries for pids that no longer exist.
func (g *Group) setPidsKeepRetry(pids []int) {
	g.setPids(pids)
	for pid := range g.retry {
		if _, ok := g.pidSet[pid]; !ok {
			delete(g.retry, pid)
		}
	}
}

func (g *Group) dropPid(pid int) {
	if _, ok := g.pidSet[pid]; !ok {
		return
	}
	delete(g.pidSet, pid)
	delete(g.retry, pid)
	kept := g.pids[:0]
	for _, p := range g.pids {
		if p != pid {
			kept = append(kept, p)
		}
	}
	g.pids = kept
}

// GroupStatus is a read-only copy of a group's state for status reporting.
type GroupStatus struct {
	Root         int        `json:"root_pid"`
	Name         string     `json:"name"`
	State        string     `json:"state"`
	Visible      bool       `json:"visible"`
	Windows      int        `json:"windows"`
	Pids         int        `json:"pids"`
	HiddenCycles int        `json:"hidden_cycles,omitempty"`
	StoppedSince *time.Time `json:"stopped_since,omitempty"`
}

func (g *Group) status() GroupStatus {
	st := GroupStatus{
		Root:    g.Root,
		Name:    g.Name,
		State:   g.State.String(),
		Visible: g.visibleNow,
		Windows: len(g.windows),
		Pids:    len(g.pids),
	}
	if g.State == StatePendingStop {
		st.HiddenCycles = g.hiddenCycles
	}
	if g.State == StateStopped {
		t := g.stoppedAt
		st.StoppedSince = &t
	}
	return st
}
