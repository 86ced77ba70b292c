package trap

import (
	"github.com/sisoputnfrba/go-nucleus/internal/devsem"
	"github.com/sisoputnfrba/go-nucleus/internal/diag"
	"github.com/sisoputnfrba/go-nucleus/internal/machine"
	"github.com/sisoputnfrba/go-nucleus/internal/nucleus"
	"github.com/sisoputnfrba/go-nucleus/internal/pcb"
	"github.com/sisoputnfrba/go-nucleus/internal/sched"
)

// Syscall numbers.
const (
	SysCreateProcess = 1
	SysTerminate      = 2
	SysP              = 3
	SysV              = 4
	SysWaitForIO      = 5
	SysGetCPUTime     = 6
	SysWaitForClock   = 7
	SysGetSupportData = 8
)

// HandleSyscall advances the saved PC past the trap instruction, copies
// the saved state into the current process's PCB, and dispatches on the
// syscall number in a0 to exactly one of the eight numbered services.
// Numbers outside 1..8 are passed up with the general index.
func HandleSyscall(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	saved.PC += 4
	n.Current.State = *saved

	switch saved.A0() {
	case SysCreateProcess:
		return sysCreateProcess(n, saved)
	case SysTerminate:
		return sysTerminate(n, saved)
	case SysP:
		return sysP(n, saved)
	case SysV:
		return sysV(n, saved)
	case SysWaitForIO:
		return sysWaitForIO(n, saved)
	case SysGetCPUTime:
		return sysGetCPUTime(n, saved)
	case SysWaitForClock:
		return sysWaitForClock(n, saved)
	case SysGetSupportData:
		return sysGetSupportData(n, saved)
	default:
		return PassUpOrDie(n, machine.PassUpGeneral, saved)
	}
}

// resume re-copies the handler's saved state (which carries the
// syscall's return value) into the current PCB, charges elapsed CPU
// time (including the time just spent inside this syscall), and loads
// the PCB's state.
func resume(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	p := n.Current
	p.State = *saved
	n.ChargeElapsed(p, n.FW.TOD())
	n.FW.LoadState(&p.State)
	return sched.OutcomeResume
}

// block charges elapsed CPU time to the current process, clears the
// current-process slot (the PCB has already been placed on a waiter
// queue by the caller), and invokes the scheduler.
func block(n *nucleus.Nucleus) sched.Outcome {
	n.ChargeElapsed(n.Current, n.FW.TOD())
	n.Current = nil
	return sched.Next(n)
}

func sysCreateProcess(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	initial, _ := saved.Arg1Ptr.(*machine.State)
	support, _ := saved.Arg2Ptr.(*pcb.SupportData)

	var initState machine.State
	if initial != nil {
		initState = *initial
	}

	child, err := n.CreateChild(n.Current, initState, support)
	if err != nil {
		var errRet int32 = -1
		saved.SetV0(uint32(errRet))
		return resume(n, saved)
	}

	n.History.Record(diag.Event{Kind: "create", PID: child.Slot})
	saved.SetV0(0)
	return resume(n, saved)
}

func sysTerminate(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	target := n.Current
	n.History.Record(diag.Event{Kind: "terminate", PID: target.Slot})
	n.ChargeElapsed(n.Current, n.FW.TOD())
	// Terminate itself clears n.Current when it reaches target, since
	// terminateOne's dispatch on "is this the current process" depends
	// on n.Current still pointing at target.
	n.Terminate(target)
	return sched.Next(n)
}

func sysP(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	sem, _ := saved.Arg1Ptr.(*int32)
	*sem--
	if *sem < 0 {
		n.ASL.InsertBlocked(sem, n.Current)
		return block(n)
	}
	return resume(n, saved)
}

func sysV(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	sem, _ := saved.Arg1Ptr.(*int32)
	*sem++
	if *sem <= 0 {
		if waiter := n.ASL.RemoveBlocked(sem); waiter != nil {
			n.Ready.Insert(waiter)
		}
	}
	return resume(n, saved)
}

func sysWaitForIO(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	line := int(saved.A1())
	device := int(saved.A2())
	wantRead := saved.A3() != 0

	idx := devsem.Index(line, device, wantRead)
	n.SoftBlockedCount++
	sem := &n.DevSem[idx]
	*sem--
	n.ASL.InsertBlocked(sem, n.Current)
	return block(n)
}

func sysGetCPUTime(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	p := n.Current
	now := n.FW.TOD()
	elapsed := now - n.StartTOD
	total := p.CPUTime + elapsed
	saved.SetV0(uint32(total.Nanoseconds()))
	return resume(n, saved)
}

func sysWaitForClock(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	sem := &n.DevSem[devsem.ClockIndex]
	n.SoftBlockedCount++
	*sem--
	n.ASL.InsertBlocked(sem, n.Current)
	return block(n)
}

func sysGetSupportData(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	saved.RetPtr = n.Current.Support
	return resume(n, saved)
}
