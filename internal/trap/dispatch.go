// Package trap implements the nucleus's single exception/interrupt entry
// point: cause-code dispatch, the eight system calls, the device
// interrupt handler, and pass-up-or-die.
package trap

import (
	"github.com/sisoputnfrba/go-nucleus/internal/machine"
	"github.com/sisoputnfrba/go-nucleus/internal/nucleus"
	"github.com/sisoputnfrba/go-nucleus/internal/sched"
)

// Dispatch is the nucleus's single entry point, invoked by firmware on
// any trap. It reads the exception cause from the BIOS data page and
// routes to the interrupt handler, the syscall handler, or the program-
// trap (pass-up-or-die) handler, with no fall-through.
func Dispatch(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	code := machine.ExcCode(saved.Cause)

	switch code {
	case machine.ExcInterrupt:
		return HandleInterrupt(n, saved)

	case machine.ExcTLBMod, machine.ExcTLBLoad, machine.ExcTLBStore:
		return PassUpOrDie(n, machine.PassUpPageFault, saved)

	case machine.ExcSyscall:
		if saved.IsUserMode() {
			// Every numbered service is privileged (kernel-mode only).
			// A user-mode syscall trap must look exactly like a hardware
			// reserved-instruction trap to the support layer: rewrite the
			// cause and re-enter the very same program-trap path, rather
			// than calling PassUpOrDie directly with a hardcoded index.
			saved.Cause = machine.SetExcCode(saved.Cause, machine.ExcRI)
			return Dispatch(n, saved)
		}
		return HandleSyscall(n, saved)

	default:
		// Codes 4..7, 9..12, and anything else: program-trap, general.
		return PassUpOrDie(n, machine.PassUpGeneral, saved)
	}
}
