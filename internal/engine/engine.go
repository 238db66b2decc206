package engine

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/winsuspend/winsuspend/pkg/winsys"
)

// Transition is one applied state change, reported to the caller for
// logging and persistence.
type Transition struct {
	Root         int
	Name         string
	From         GroupState
	To           GroupState
	Pids         []int
	SuspendedFor time.Duration
	At           time.Time
}

// Options configures an Engine. Inventory, Tree and Actuator are
// mandatory; a nil Clipboard disables the clipboard guard.
type Options struct {
	Inventory      winsys.Inventory
	Tree           winsys.ProcessTree
	Actuator       winsys.Actuator
	Clipboard      winsys.Clipboard
	DebounceCycles int
	// Targets restricts management to groups whose root command name is
	// listed. Empty means every group with a window is managed.
	Targets []string
	Logger  *zap.SugaredLogger
}

// Engine owns the process-group table and drives the suspend/resume state
// machine. It is single-threaded: Cycle, ResumeAll and Snapshot must all
// be called from the same goroutine.
type Engine struct {
	inv      winsys.Inventory
	tree     winsys.ProcessTree
	act      winsys.Actuator
	clip     winsys.Clipboard
	log      *zap.SugaredLogger
	debounce int
	targets  map[string]struct{}

	groups map[int]*Group
	byPid  map[int]int

	lastClip   []byte
	clipPrimed bool
}

func New(opts Options) *Engine {
	debounce := opts.DebounceCycles
	if debounce < 1 {
		debounce = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	var targets map[string]struct{}
	if len(opts.Targets) > 0 {
		targets = make(map[string]struct{}, len(opts.Targets))
		for _, t := range opts.Targets {
			targets[t] = struct{}{}
		}
	}
	return &Engine{
		inv:      opts.Inventory,
		tree:     opts.Tree,
		act:      opts.Actuator,
		clip:     opts.Clipboard,
		log:      logger,
		debounce: debounce,
		targets:  targets,
		groups:   make(map[int]*Group),
		byPid:    make(map[int]int),
	}
}

// Cycle runs one full polling cycle: refresh the process snapshot, query
// the inventory, poll the clipboard, recompute visibility, advance every
// group's state and apply the resulting signals. On any query failure the
// cycle is skipped: no state is mutated and no signals are sent.
func (e *Engine) Cycle(ctx context.Context) ([]Transition, error) {
	if err := e.tree.Refresh(); err != nil {
		return nil, errors.Wrap(err, "process tree snapshot")
	}
	windows, err := e.inv.ListWindows(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list windows")
	}
	visible, err := e.inv.WorkspaceVisibility(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "workspace visibility")
	}

	clipChanged := false
	if e.clip != nil {
		fp, err := e.clip.Fingerprint(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "clipboard fingerprint")
		}
		if e.clipPrimed && !bytes.Equal(fp, e.lastClip) {
			clipChanged = true
		}
		e.lastClip = fp
		e.clipPrimed = true
	}

	e.trackVisibility(windows, visible)
	e.updateGuard(clipChanged)

	// All transitions are decided before any signal goes out, so no
	// decision ever observes a partially applied sibling.
	transitions := e.apply(e.decide())
	e.expire()
	return transitions, nil
}

// trackVisibility refreshes every group's pid set from the snapshot,
// attributes this cycle's windows to groups (creating groups for unseen
// root pids) and computes per-group visibility.
func (e *Engine) trackVisibility(windows []winsys.Window, visible map[winsys.WorkspaceID]bool) {
	e.byPid = make(map[int]int)
	for root, g := range e.groups {
		g.prevVisible = g.visibleNow
		g.visibleNow = false
		g.windows = make(map[winsys.WindowID]struct{})
		g.setPidsKeepRetry(e.tree.Descendants(root))
		if g.Name == "" {
			g.Name = e.tree.Comm(root)
		}
		for _, pid := range g.pids {
			e.byPid[pid] = root
		}
	}

	for _, w := range windows {
		if w.PID <= 0 {
			continue
		}
		root, ok := e.byPid[w.PID]
		if !ok {
			if !e.manages(w.PID) {
				continue
			}
			root = w.PID
			g := newGroup(root, e.tree.Comm(root), e.tree.Descendants(root))
			e.groups[root] = g
			for _, pid := range g.pids {
				e.byPid[pid] = root
			}
			e.log.Infow("tracking new group", "root", root, "name", g.Name, "pids", len(g.pids))
		}
		g := e.groups[root]
		g.windows[w.ID] = struct{}{}
		if visible[w.Workspace] {
			g.visibleNow = true
		}
	}
}

func (e *Engine) manages(pid int) bool {
	if e.targets == nil {
		return true
	}
	_, ok := e.targets[e.tree.Comm(pid)]
	return ok
}

// updateGuard arms the clipboard veto on every candidate owner of a
// fingerprint change: groups visible this cycle or last cycle, and groups
// already pending a stop (they were visible within the debounce horizon,
// so the copy may have happened just before their workspace hid). A
// visible cycle without a change clears the armed flag, keeping it tied to
// the most recent visible cycle.
func (e *Engine) updateGuard(changed bool) {
	if e.clip == nil {
		return
	}
	for _, g := range e.groups {
		switch {
		case g.visibleNow:
			g.vetoArmed = changed
			g.vetoConsumed = false
		case changed && (g.prevVisible || g.State == StatePendingStop):
			g.vetoArmed = true
			g.vetoConsumed = false
		}
	}
}

type decision struct {
	g  *Group
	to GroupState
}

func (e *Engine) decide() []decision {
	var decisions []decision
	for _, g := range e.sortedGroups() {
		switch g.State {
		case StateRunning:
			if !g.visibleNow {
				g.State = StatePendingStop
				g.hiddenCycles = 1
				e.log.Debugw("group hidden, debouncing", "root", g.Root, "name", g.Name)
				if d, ok := e.commitStop(g); ok {
					decisions = append(decisions, d)
				}
			}

		case StatePendingStop:
			if g.visibleNow {
				g.State = StateRunning
				g.hiddenCycles = 0
				e.log.Debugw("group visible again, stop cancelled", "root", g.Root, "name", g.Name)
				break
			}
			g.hiddenCycles++
			if d, ok := e.commitStop(g); ok {
				decisions = append(decisions, d)
			}

		case StateStopped:
			// Resume is never debounced.
			if g.visibleNow {
				decisions = append(decisions, decision{g: g, to: StateRunning})
			}
		}
	}
	return decisions
}

// commitStop decides whether a pending stop goes through this cycle: the
// debounce must have elapsed and the clipboard guard must not veto. The
// group stops on its Nth consecutive hidden cycle, N being the configured
// debounce; entering StatePendingStop counts as cycle 1.
func (e *Engine) commitStop(g *Group) (decision, bool) {
	if g.hiddenCycles < e.debounce {
		return decision{}, false
	}
	if g.vetoArmed && !g.vetoConsumed {
		// One-shot: the same change cannot defer this group again.
		g.vetoConsumed = true
		e.log.Infow("stop deferred by clipboard guard", "root", g.Root, "name", g.Name)
		return decision{}, false
	}
	return decision{g: g, to: StateStopped}, true
}

func (e *Engine) apply(decisions []decision) []Transition {
	var transitions []Transition
	decided := make(map[int]struct{}, len(decisions))

	for _, d := range decisions {
		g := d.g
		decided[g.Root] = struct{}{}
		from := g.State
		tr := Transition{Root: g.Root, Name: g.Name, From: from, To: d.to, At: time.Now()}

		switch d.to {
		case StateStopped:
			tr.Pids = e.signal(g, true)
			g.State = StateStopped
			g.stoppedAt = tr.At
			e.log.Infow("group stopped", "root", g.Root, "name", g.Name, "pids", len(tr.Pids))
		case StateRunning:
			tr.Pids = e.signal(g, false)
			tr.SuspendedFor = tr.At.Sub(g.stoppedAt)
			g.State = StateRunning
			g.hiddenCycles = 0
			e.log.Infow("group resumed", "root", g.Root, "name", g.Name,
				"pids", len(tr.Pids), "suspended_for", tr.SuspendedFor)
		}
		transitions = append(transitions, tr)
	}

	// Re-send the signal matching the current state to pids whose last
	// attempt failed.
	for _, g := range e.sortedGroups() {
		if _, ok := decided[g.Root]; ok || len(g.retry) == 0 {
			continue
		}
		switch g.State {
		case StateStopped:
			e.retrySignals(g, true)
		case StateRunning:
			e.retrySignals(g, false)
		}
	}
	return transitions
}

// signal pauses or resumes every live pid of g. A vanished pid is dropped
// from the group; any other failure is logged, remembered for retry and
// does not fail the transition.
func (e *Engine) signal(g *Group, pause bool) []int {
	sent := make([]int, 0, len(g.pids))
	failed := make(map[int]struct{})
	for _, pid := range append([]int(nil), g.pids...) {
		err := e.actuate(pid, pause)
		switch {
		case err == nil:
			sent = append(sent, pid)
		case errors.Is(err, winsys.ErrProcessGone):
			g.dropPid(pid)
		default:
			e.log.Warnw("signal failed", "root", g.Root, "pid", pid, "pause", pause, "error", err)
			failed[pid] = struct{}{}
		}
	}
	g.retry = failed
	return sent
}

func (e *Engine) retrySignals(g *Group, pause bool) {
	for pid := range g.retry {
		err := e.actuate(pid, pause)
		switch {
		case err == nil:
			delete(g.retry, pid)
		case errors.Is(err, winsys.ErrProcessGone):
			g.dropPid(pid)
		default:
			e.log.Warnw("signal retry failed", "root", g.Root, "pid", pid, "pause", pause, "error", err)
		}
	}
}

func (e *Engine) actuate(pid int, pause bool) error {
	if pause {
		return e.act.Pause(pid)
	}
	return e.act.Resume(pid)
}

// expire discards groups that have had no windows and no live pids for one
// full cycle.
func (e *Engine) expire() {
	for root, g := range e.groups {
		if len(g.windows) == 0 && len(g.pids) == 0 {
			g.emptyCycles++
		} else {
			g.emptyCycles = 0
		}
		if g.emptyCycles >= 2 {
			delete(e.groups, root)
			e.log.Infow("group expired", "root", root, "name", g.Name)
		}
	}
}

// ResumeAll resumes every stopped group. Called on shutdown so no process
// is left suspended after the daemon exits.
func (e *Engine) ResumeAll() []Transition {
	var transitions []Transition
	for _, g := range e.sortedGroups() {
		if g.State != StateStopped {
			continue
		}
		tr := Transition{Root: g.Root, Name: g.Name, From: StateStopped, To: StateRunning, At: time.Now()}
		tr.Pids = e.signal(g, false)
		tr.SuspendedFor = tr.At.Sub(g.stoppedAt)
		g.State = StateRunning
		g.hiddenCycles = 0
		e.log.Infow("group resumed on shutdown", "root", g.Root, "name", g.Name, "pids", len(tr.Pids))
		transitions = append(transitions, tr)
	}
	return transitions
}

// Snapshot returns a copy of every tracked group's state.
func (e *Engine) Snapshot() []GroupStatus {
	statuses := make([]GroupStatus, 0, len(e.groups))
	for _, g := range e.sortedGroups() {
		statuses = append(statuses, g.status())
	}
	return statuses
}

func (e *Engine) sortedGroups() []*Group {
	groups := make([]*Group, 0, len(e.groups))
	for _, g := range e.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Root < groups[j].Root })
	return groups
}
