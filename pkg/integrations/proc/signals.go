package proc

import (
	"syscall"

	"github.com/pkg/errors"

	"github.com/winsuspend/winsuspend/pkg/winsys"
)

// Actuator delivers SIGSTOP/SIGCONT to one pid per call. Calls are
// independent; a vanished process surfaces as winsys.ErrProcessGone.
type Actuator struct{}

func NewActuator() Actuator {
	return Actuator{}
}

func (Actuator) Pause(pid int) error {
	return signal(pid, syscall.SIGSTOP)
}

func (Actuator) Resume(pid int) error {
	return signal(pid, syscall.SIGCONT)
}

func signal(pid int, sig syscall.Signal) error {
	err := syscall.Kill(pid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, syscall.ESRCH):
		return winsys.ErrProcessGone
	default:
		return errors.Wrapf(err, "send %v to pid %d", sig, pid)
	}
}
