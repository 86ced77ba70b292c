package trap

import (
	"time"

	"github.com/sisoputnfrba/go-nucleus/internal/devsem"
	"github.com/sisoputnfrba/go-nucleus/internal/diag"
	"github.com/sisoputnfrba/go-nucleus/internal/machine"
	"github.com/sisoputnfrba/go-nucleus/internal/nucleus"
	"github.com/sisoputnfrba/go-nucleus/internal/sched"
)

const (
	lineLocalTimer  = 1
	linePseudoClock = 2
	lineDeviceFirst = 3
	lineDeviceLast  = 7

	ackCommand = 0x1
)

// HandleInterrupt implements the three-tier interrupt priority: local
// timer, then pseudo-clock, then device lines 3..7 (lowest-numbered
// device first within a line).
func HandleInterrupt(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	savedTimer := n.FW.TimerValue()
	pending := n.FW.PendingLines()

	if hasLocalTimerInterrupt(saved) {
		return handleLocalTimer(n, saved)
	}
	if hasPseudoClockInterrupt(saved) {
		return handlePseudoClock(n, saved, savedTimer)
	}
	for line := lineDeviceFirst; line <= lineDeviceLast; line++ {
		idx := line - lineDeviceFirst
		bits := pending[idx]
		if bits == 0 {
			continue
		}
		for dev := 0; dev < devsem.Devices; dev++ {
			if bits&(1<<dev) != 0 {
				return handleDevice(n, saved, line, dev, savedTimer)
			}
		}
	}

	// No pending line decoded (spurious); resume as-is.
	return resumeAfterInterrupt(n, saved, savedTimer)
}

// hasLocalTimerInterrupt/hasPseudoClockInterrupt consult bit 8+line of
// the saved cause word's pending-interrupt bitmap.
func hasLocalTimerInterrupt(saved *machine.State) bool {
	return machine.PendingInterrupts(saved.Cause)&(1<<lineLocalTimer) != 0
}

func hasPseudoClockInterrupt(saved *machine.State) bool {
	return machine.PendingInterrupts(saved.Cause)&(1<<linePseudoClock) != 0
}

func handleLocalTimer(n *nucleus.Nucleus, saved *machine.State) sched.Outcome {
	if n.Current == nil {
		n.Panic(nucleus.ReasonTimerNoProcess, "local timer interrupt with no current process")
		return sched.OutcomePanic
	}
	n.Current.State = *saved
	n.ChargeElapsed(n.Current, n.FW.TOD())
	preempted := n.Current
	n.Ready.Insert(preempted)
	n.Current = nil
	n.History.Record(diag.Event{Kind: "preempt", PID: preempted.Slot})
	return sched.Next(n)
}

func handlePseudoClock(n *nucleus.Nucleus, saved *machine.State, savedTimer time.Duration) sched.Outcome {
	n.FW.LoadIntervalTimer(n.Cfg.ClockInterval)
	sem := &n.DevSem[devsem.ClockIndex]
	for {
		waiter := n.ASL.RemoveBlocked(sem)
		if waiter == nil {
			break
		}
		n.Ready.Insert(waiter)
		n.SoftBlockedCount--
	}
	*sem = 0
	n.History.Record(diag.Event{Kind: "tick"})
	return resumeAfterInterrupt(n, saved, savedTimer)
}

func handleDevice(n *nucleus.Nucleus, saved *machine.State, line, dev int, savedTimer time.Duration) sched.Outcome {
	regs := n.FW.DeviceRegs()
	lineIdx := line - lineDeviceFirst

	transmit := line == devsem.TerminalLine && regs.TransmitStatus(dev) != 0
	var status uint32
	if transmit {
		status = regs.TransmitStatus(dev)
		regs.SetTransmitCommand(dev, ackCommand)
	} else {
		status = regs.Status(lineIdx, dev)
		regs.SetCommand(lineIdx, dev, ackCommand)
	}

	idx := devsem.Index(line, dev, !transmit)
	sem := &n.DevSem[idx]
	*sem++
	if *sem <= 0 {
		if waiter := n.ASL.RemoveBlocked(sem); waiter != nil {
			waiter.State.SetV0(status)
			n.Ready.Insert(waiter)
			n.SoftBlockedCount--
		}
	}

	n.History.Record(diag.Event{Kind: "device", Note: "line=" + itoa(line) + " dev=" + itoa(dev)})
	return resumeAfterInterrupt(n, saved, savedTimer)
}

// resumeAfterInterrupt restores the pre-interrupt time-slice remainder
// and resumes the current process, or invokes the scheduler if there is
// none. Every resume path must restore savedTimer rather than silently
// granting a fresh slice.
func resumeAfterInterrupt(n *nucleus.Nucleus, saved *machine.State, savedTimer time.Duration) sched.Outcome {
	if n.Current == nil {
		return sched.Next(n)
	}
	n.FW.SetTimer(savedTimer)
	n.Current.State = *saved
	n.FW.LoadState(&n.Current.State)
	return sched.OutcomeResume
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	p := len(buf)
	for i > 0 {
		p--
		buf[p] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		p--
		buf[p] = '-'
	}
	return string(buf[p:])
}
