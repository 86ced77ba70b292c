// Package sched implements the nucleus's scheduler: pop the ready queue,
// arm the time slice, and load the chosen process's state, or, when the
// ready queue is empty, decide among halt, idle, and deadlock-panic.
package sched

import (
	"math"
	"time"

	"github.com/sisoputnfrba/go-nucleus/internal/nucleus"
)

// maxTimerValue is the maximum-duration value the local timer is armed
// with while idling, so that only a genuine device/pseudo-clock
// interrupt, never a spurious slice expiry, wakes the wait.
const maxTimerValue = time.Duration(math.MaxInt64)

// Outcome is the tagged "what happened" result Next reports, so the
// dispatcher/boot loop can drive its trap loop off the result without
// re-deriving which firmware operation already ran.
type Outcome int

const (
	OutcomeResume Outcome = iota
	OutcomeHalt
	OutcomeIdle
	OutcomePanic
)

// Next pops the ready queue and dispatches the head, or, when the ready
// queue is empty, picks among halt, idle, and deadlock-panic.
func Next(n *nucleus.Nucleus) Outcome {
	if !n.Ready.IsEmpty() {
		p := n.Ready.RemoveHead()
		n.Current = p
		n.StartTOD = n.FW.TOD()
		n.FW.SetTimer(n.Cfg.TimeSlice)
		n.FW.LoadState(&p.State)
		return OutcomeResume
	}

	switch {
	case n.ProcessCount == 0:
		n.FW.Halt()
		return OutcomeHalt

	case n.ProcessCount > 0 && n.SoftBlockedCount > 0:
		n.FW.SetTimer(maxTimerValue)
		n.FW.WaitForInterrupt()
		return OutcomeIdle

	default: // ProcessCount > 0 && SoftBlockedCount == 0
		n.Panic(nucleus.ReasonDeadlock, "ready queue empty, processes exist, none soft-blocked")
		return OutcomePanic
	}
}
