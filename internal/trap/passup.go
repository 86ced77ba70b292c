package trap

import (
	"github.com/sisoputnfrba/go-nucleus/internal/diag"
	"github.com/sisoputnfrba/go-nucleus/internal/machine"
	"github.com/sisoputnfrba/go-nucleus/internal/nucleus"
	"github.com/sisoputnfrba/go-nucleus/internal/sched"
)

// PassUpOrDie implements pass-up-or-die: if the current process registered
// a support structure, the saved state is copied into its exception slot
// idx and control resumes at the matching context descriptor; otherwise
// the current process's entire subtree is terminated and the scheduler
// picks the next process to run.
func PassUpOrDie(n *nucleus.Nucleus, idx machine.PassUpIndex, saved *machine.State) sched.Outcome {
	p := n.Current
	if p == nil {
		// A program trap with no current process can only be a nucleus
		// bug; there is nothing to pass up to and nothing to kill.
		n.Panic(nucleus.ReasonInvariant, "program trap with no current process")
		return sched.OutcomePanic
	}

	sup := p.Support
	if sup == nil {
		n.History.Record(diag.Event{Kind: "die", PID: p.Slot})
		n.ChargeElapsed(p, n.FW.TOD())
		// Terminate clears n.Current itself once it reaches p; see the
		// same note in trap.sysTerminate.
		n.Terminate(p)
		return sched.Next(n)
	}

	sup.ExceptState[idx] = *saved
	n.ChargeElapsed(p, n.FW.TOD())
	n.History.Record(diag.Event{Kind: "passup", PID: p.Slot})
	n.FW.LoadContext(sup.ExceptContext[idx])
	return sched.OutcomeResume
}
