// Command nucleus boots the nucleus against a single demo test payload:
// configure the logger, load configuration, build the runtime state, and
// run to completion. There is no server here, the nucleus has no
// network surface, so the "serve forever" loop becomes a trap loop that
// runs until halt or panic.
package main

import (
	"fmt"
	"os"

	"github.com/sisoputnfrba/go-nucleus/internal/config"
	"github.com/sisoputnfrba/go-nucleus/internal/machine"
	"github.com/sisoputnfrba/go-nucleus/internal/nlog"
	"github.com/sisoputnfrba/go-nucleus/internal/nucleus"
	"github.com/sisoputnfrba/go-nucleus/internal/sched"
	"github.com/sisoputnfrba/go-nucleus/internal/trap"
)

// Demo machine geometry for the boot test payload. The real RAM base/
// size and test-entry address are supplied by the simulator firmware at
// link time; these stand in for that for the purposes of booting the
// demo.
const (
	ramTop    = 0x20010000
	testEntry = 0x80000150
)

func main() {
	log, err := nlog.New("nucleus.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "nucleus: cannot open log: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Default()
	if len(os.Args) > 1 {
		cfg, err = config.Load(os.Args[1])
		if err != nil {
			log.Boot("cannot load %s, using defaults: %v", os.Args[1], err)
			cfg = config.Default()
		}
	}
	log.Boot("max_proc=%d max_sem=%d time_slice=%s clock_interval=%s",
		cfg.MaxProc, cfg.MaxSem, cfg.TimeSlice, cfg.ClockInterval)

	fw := machine.NewSim()
	n := nucleus.New(cfg, fw, log)

	initial := machine.State{
		PC:     testEntry, // kernel mode: StatusUserMode left unset
	}
	initial.Reg[machine.RegSP] = ramTop
	initial.Reg[machine.RegT9] = testEntry // secondary jump register

	if _, err := n.CreateChild(nil, initial, nil); err != nil {
		log.Boot("cannot create initial process: %v", err)
		os.Exit(1)
	}
	log.Counts("processes created at boot", n.ProcessCount)

	run(n, fw)
}

// run drives the trap loop: the scheduler dispatches a process, the
// caller is expected (in a real build) to execute it until firmware
// raises the next trap and calls trap.Dispatch; since Sim has no
// instruction-level execution, this demo loop advances the simulated
// clock by one time slice per iteration to stand in for "the process ran
// until its next trap," delivering a local timer interrupt each time.
func run(n *nucleus.Nucleus, fw *machine.Sim) {
	outcome := sched.Next(n)
	for {
		switch outcome {
		case sched.OutcomeHalt:
			n.Log.Boot("halted: process count reached zero")
			return

		case sched.OutcomePanic:
			n.Log.Boot("panic: %s", n.Panicked().Detail)
			return

		case sched.OutcomeIdle:
			fw.Advance(n.Cfg.ClockInterval)
			saved, _ := fw.LastLoaded()
			saved.Cause = machine.SetExcCode(saved.Cause, machine.ExcInterrupt)
			saved.Cause |= uint32(1) << (8 + 2) // pseudo-clock line pending
			outcome = trap.Dispatch(n, &saved)

		case sched.OutcomeResume:
			if fw.Advance(n.Cfg.TimeSlice) {
				saved, _ := fw.LastLoaded()
				saved.Cause = machine.SetExcCode(saved.Cause, machine.ExcInterrupt)
				saved.Cause |= uint32(1) << (8 + 1) // local timer line pending
				outcome = trap.Dispatch(n, &saved)
				continue
			}
			// No interrupt before the slice elapsed in this demo driver;
			// nothing more to execute, so terminate as if the payload
			// returned.
			saved, _ := fw.LastLoaded()
			saved.Reg[machine.RegA0] = trap.SysTerminate
			saved.Cause = machine.SetExcCode(saved.Cause, machine.ExcSyscall)
			outcome = trap.Dispatch(n, &saved)
		}
	}
}
