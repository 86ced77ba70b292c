// Package nucleus bundles the statically sized PCB pool, the Active
// Semaphore List, the device semaphore table, and the process-wide
// counters and current-process slot into one single-owner value, so
// that tests can construct independent nuclei instead of sharing
// mutable package globals.
package nucleus

import (
	"time"

	"github.com/sisoputnfrba/go-nucleus/internal/asl"
	"github.com/sisoputnfrba/go-nucleus/internal/config"
	"github.com/sisoputnfrba/go-nucleus/internal/devsem"
	"github.com/sisoputnfrba/go-nucleus/internal/diag"
	"github.com/sisoputnfrba/go-nucleus/internal/machine"
	"github.com/sisoputnfrba/go-nucleus/internal/nlog"
	"github.com/sisoputnfrba/go-nucleus/internal/pcb"
)

// PanicReason names which fatal condition triggered a panic, so tests
// can assert which one fired rather than just that one did.
type PanicReason int

const (
	ReasonTimerNoProcess PanicReason = iota
	ReasonDeadlock
	ReasonInvariant
)

func (r PanicReason) String() string {
	switch r {
	case ReasonTimerNoProcess:
		return "local timer fired with no current process"
	case ReasonDeadlock:
		return "deadlock: live processes exist but none is runnable or soft-blocked"
	case ReasonInvariant:
		return "nucleus invariant violated"
	default:
		return "unknown panic reason"
	}
}

// Nucleus is the single-owner value handed to every trap entry point.
type Nucleus struct {
	Cfg config.Config
	FW  machine.Firmware
	Log *nlog.Logger

	Pool   *pcb.Pool
	ASL    *asl.ASL
	DevSem [devsem.Count]int32
	Ready  pcb.Queue

	Current *pcb.PCB

	ProcessCount     int
	SoftBlockedCount int

	// StartTOD is the TOD snapshot taken when Current was dispatched
	// (or when the current trap began), used to charge elapsed CPU
	// time at every exit path.
	StartTOD time.Duration

	History *diag.History

	panicked *PanicEvent
}

// PanicEvent records the first fatal condition the nucleus hit.
type PanicEvent struct {
	Reason PanicReason
	Detail string
}

// New constructs a Nucleus with statically sized pools per cfg.
func New(cfg config.Config, fw machine.Firmware, log *nlog.Logger) *Nucleus {
	return &Nucleus{
		Cfg:  cfg,
		FW:   fw,
		Log:  log,
		Pool: pcb.NewPool(cfg.MaxProc),
		// cfg.MaxSem counts the two sentinels, so asl.New takes the
		// usable descriptor count, not cfg.MaxSem itself.
		ASL:     asl.New(cfg.MaxSem - 2),
		History: diag.NewHistory(cfg.MaxProc * 4),
	}
}

// Panic records the first reason/detail it is given and forwards every
// call to the firmware panic operation; this is the only path by which
// the nucleus calls
// machine.Firmware.Panic, so tests can intercept it via Sim without the
// test process exiting.
func (n *Nucleus) Panic(reason PanicReason, detail string) {
	if n.panicked == nil {
		n.panicked = &PanicEvent{Reason: reason, Detail: detail}
	}
	n.History.Record(diag.Event{Kind: "panic", Note: reason.String() + ": " + detail})
	n.FW.Panic(reason.String() + ": " + detail)
}

// Panicked returns the first recorded panic event, or nil if none
// occurred.
func (n *Nucleus) Panicked() *PanicEvent { return n.panicked }

// ChargeElapsed adds the time elapsed since StartTOD to p's accumulated
// CPU time and re-snapshots StartTOD to now. Called at every transition
// out of current, and again just before resume.
func (n *Nucleus) ChargeElapsed(p *pcb.PCB, now time.Duration) {
	if p == nil {
		return
	}
	elapsed := now - n.StartTOD
	if elapsed > 0 {
		p.CPUTime += elapsed
	}
	n.StartTOD = now
}

// Snapshot is a point-in-time, fully-copied view of nucleus state for
// introspection; it never aliases live pool/ASL storage.
type Snapshot struct {
	ProcessCount     int
	SoftBlockedCount int
	ReadyLen         int
	ASLDescriptors   int
	ASLFree          int
	CurrentSlot      int // -1 if no current process
	PoolFree         int
}

// Snapshot captures a Snapshot of n's counters, ASL occupancy, and pool
// free count as a plain method call, for read-only introspection.
func (n *Nucleus) Snapshot() Snapshot {
	slot := -1
	if n.Current != nil {
		slot = n.Current.Slot
	}
	return Snapshot{
		ProcessCount:     n.ProcessCount,
		SoftBlockedCount: n.SoftBlockedCount,
		ReadyLen:         n.Ready.Len(),
		ASLDescriptors:   n.ASL.Len(),
		ASLFree:          n.ASL.FreeCount(),
		CurrentSlot:      slot,
		PoolFree:         n.Pool.Free(),
	}
}
