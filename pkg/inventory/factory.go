package inventory

import (
	"os"

	"github.com/pkg/errors"

	"github.com/winsuspend/winsuspend/pkg/integrations/sway"
	"github.com/winsuspend/winsuspend/pkg/integrations/x11"
	"github.com/winsuspend/winsuspend/pkg/winsys"
)

// New picks the best available inventory backend: sway/i3 IPC when a
// socket is advertised (it reports per-output workspace visibility on
// multi-monitor setups), otherwise raw EWMH over X.
func New() (winsys.Inventory, error) {
	if os.Getenv("SWAYSOCK") != "" || os.Getenv("I3SOCK") != "" {
		var resolver sway.PIDResolver
		var closer func() error
		if os.Getenv("DISPLAY") != "" {
			// i3 needs an X connection to resolve window pids.
			if x, err := x11.New(); err == nil {
				resolver = x
				closer = x.Close
			}
		}
		if inv, err := sway.New(resolver, closer); err == nil {
			return inv, nil
		}
		if closer != nil {
			closer()
		}
	}

	if os.Getenv("DISPLAY") != "" {
		return x11.New()
	}

	return nil, errors.New("no supported window system detected (need sway, i3 or X11)")
}

// DetectBackend names the backend New would pick, for status output.
func DetectBackend() string {
	switch {
	case os.Getenv("SWAYSOCK") != "":
		return "sway"
	case os.Getenv("I3SOCK") != "":
		return "i3"
	case os.Getenv("DISPLAY") != "":
		return "x11"
	default:
		return "unknown"
	}
}
