// Package x11 enumerates windows and desktops over EWMH root-window
// properties using a raw X connection.
package x11

import (
	"context"
	"encoding/binary"
	"strconv"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/winsuspend/winsuspend/pkg/winsys"
)

// _NET_WM_DESKTOP value for windows shown on every desktop.
const allDesktops = 0xFFFFFFFF

// stickyWorkspace is the synthetic workspace for windows pinned to all
// desktops; it is always reported visible.
const stickyWorkspace = winsys.WorkspaceID("sticky")

type Inventory struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

func New() (*Inventory, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "connect to X server")
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	inv := &Inventory{
		conn:  conn,
		root:  root,
		atoms: make(map[string]xproto.Atom),
	}

	atomNames := []string{
		"_NET_CLIENT_LIST",
		"_NET_WM_DESKTOP",
		"_NET_WM_PID",
		"_NET_CURRENT_DESKTOP",
		"_NET_NUMBER_OF_DESKTOPS",
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "intern atom %s", name)
		}
		inv.atoms[name] = reply.Atom
	}

	return inv, nil
}

func (inv *Inventory) Name() string { return "x11" }

func (inv *Inventory) Close() error {
	inv.conn.Close()
	return nil
}

func (inv *Inventory) ListWindows(ctx context.Context) ([]winsys.Window, error) {
	data, err := inv.getProperty(inv.root, inv.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, 4096)
	if err != nil {
		return nil, errors.Wrap(err, "read _NET_CLIENT_LIST")
	}

	var windows []winsys.Window
	for i := 0; i+4 <= len(data); i += 4 {
		wid := xproto.Window(binary.LittleEndian.Uint32(data[i:]))

		pid, ok := inv.cardinal(wid, "_NET_WM_PID")
		if !ok || pid == 0 {
			// No pid means nothing to suspend; skip it.
			continue
		}

		// A window without a desktop cannot be placed, so it counts as
		// visible rather than risking a wrong suspend.
		ws := stickyWorkspace
		if desk, ok := inv.cardinal(wid, "_NET_WM_DESKTOP"); ok {
			ws = desktopWorkspace(desk)
		}

		windows = append(windows, winsys.Window{
			ID:        winsys.WindowID(wid),
			Workspace: ws,
			PID:       int(pid),
		})
	}

	return windows, nil
}

// WorkspaceVisibility reports the current EWMH desktop as the single
// visible workspace. Multi-output visibility needs the sway backend; plain
// EWMH only exposes one current desktop.
func (inv *Inventory) WorkspaceVisibility(ctx context.Context) (map[winsys.WorkspaceID]bool, error) {
	current, ok := inv.cardinal(inv.root, "_NET_CURRENT_DESKTOP")
	if !ok {
		return nil, errors.New("read _NET_CURRENT_DESKTOP")
	}
	count, ok := inv.cardinal(inv.root, "_NET_NUMBER_OF_DESKTOPS")
	if !ok || count <= current {
		count = current + 1
	}

	visible := make(map[winsys.WorkspaceID]bool, count+1)
	for i := uint32(0); i < count; i++ {
		visible[desktopWorkspace(i)] = i == current
	}
	visible[stickyWorkspace] = true
	return visible, nil
}

// WindowPID resolves the owning pid of an X window via _NET_WM_PID. Used
// by the sway backend on i3, whose IPC tree carries X window ids but no
// pids.
func (inv *Inventory) WindowPID(id winsys.WindowID) (int, bool) {
	pid, ok := inv.cardinal(xproto.Window(id), "_NET_WM_PID")
	if !ok || pid == 0 {
		return 0, false
	}
	return int(pid), true
}

func (inv *Inventory) getProperty(window xproto.Window, atom xproto.Atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(inv.conn, false, window, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (inv *Inventory) cardinal(window xproto.Window, atomName string) (uint32, bool) {
	data, err := inv.getProperty(window, inv.atoms[atomName], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data), true
}

func desktopWorkspace(desk uint32) winsys.WorkspaceID {
	if desk == allDesktops {
		return stickyWorkspace
	}
	return winsys.WorkspaceID(strconv.FormatUint(uint64(desk), 10))
}
