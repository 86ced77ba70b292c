package trap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisoputnfrba/go-nucleus/internal/machine"
	"github.com/sisoputnfrba/go-nucleus/internal/sched"
	"github.com/sisoputnfrba/go-nucleus/internal/trap"
)

func TestScenarioRoundRobinRotatesThreeCPUBoundChildren(t *testing.T) {
	n, fw := newTestNucleus(t)
	var pids []int
	for i := 0; i < 3; i++ {
		p, err := n.CreateChild(nil, machine.State{PC: uint32(0x100 + i)}, nil)
		require.NoError(t, err)
		pids = append(pids, p.Slot)
	}

	outcome := sched.Next(n)
	require.Equal(t, sched.OutcomeResume, outcome)

	var dispatchOrder []int
	for i := 0; i < 6; i++ {
		dispatchOrder = append(dispatchOrder, n.Current.Slot)
		fw.Advance(n.Cfg.TimeSlice)
		saved, ok := fw.LastLoaded()
		require.True(t, ok)
		saved.Cause = machine.SetExcCode(saved.Cause, machine.ExcInterrupt)
		saved.Cause |= uint32(1) << (8 + 1)
		outcome = trap.Dispatch(n, &saved)
		require.Equal(t, sched.OutcomeResume, outcome)
	}

	// With exactly 3 runnable processes and no blocking, round robin
	// must visit every PID once before repeating.
	assert.Equal(t, dispatchOrder[0:3], dispatchOrder[3:6])
	assert.ElementsMatch(t, pids, dispatchOrder[0:3])
}

func TestScenarioProducerConsumerOnOneSemaphore(t *testing.T) {
	n, _ := newTestNucleus(t)
	consumer, err := n.CreateChild(nil, machine.State{}, nil)
	require.NoError(t, err)
	producer, err := n.CreateChild(nil, machine.State{}, nil)
	require.NoError(t, err)

	require.Equal(t, sched.OutcomeResume, sched.Next(n))
	require.Same(t, consumer, n.Current, "FIFO dispatch: consumer was created first")

	var sem int32 = 0

	// Consumer calls P first: the buffer is empty, so it blocks. Blocking
	// invokes the scheduler itself, which dispatches the only other
	// runnable process: the producer.
	pSaved := machine.State{}
	pSaved.Reg[machine.RegA0] = trap.SysP
	pSaved.Arg1Ptr = &sem
	outcome := trap.HandleSyscall(n, &pSaved)
	assert.Equal(t, sched.OutcomeResume, outcome)
	assert.Same(t, producer, n.Current)
	assert.Same(t, consumer, n.ASL.HeadBlocked(&sem))

	// Producer calls V: the blocked consumer is released onto the ready
	// queue, not resumed directly.
	vSaved := machine.State{}
	vSaved.Reg[machine.RegA0] = trap.SysV
	vSaved.Arg1Ptr = &sem
	outcome = trap.HandleSyscall(n, &vSaved)
	assert.Equal(t, sched.OutcomeResume, outcome)
	assert.Same(t, producer, n.Current, "V does not preempt the caller")
	assert.Equal(t, int32(0), sem)
	assert.Equal(t, 1, n.Ready.Len())
	assert.Same(t, consumer, n.Ready.Head())
}

func TestScenarioTerminalWriteReleasesWaiterWithStatus(t *testing.T) {
	n, fw := newTestNucleus(t)
	writer, err := n.CreateChild(nil, machine.State{}, nil)
	require.NoError(t, err)
	n.Ready.RemoveHead()

	const termLine, termDev = 7, 3
	idx := 0 // computed below via the same formula devsem uses
	idx = (termLine - 3) * 8
	idx += termDev
	// transmit slot is the receive slot's mirror, +8 per device block
	idx += 8

	sem := &n.DevSem[idx]
	*sem--
	n.ASL.InsertBlocked(sem, writer)
	n.SoftBlockedCount++

	fw.RaiseLine(termLine-3, termDev)
	fw.DeviceRegs().Regs[termLine-3][termDev][machine.FieldData0] = 0x5 // transmit status

	n.Current, _ = n.CreateChild(nil, machine.State{}, nil)
	n.Ready.RemoveHead()
	n.StartTOD = n.FW.TOD()
	fw.SetTimer(n.Cfg.TimeSlice)

	var saved machine.State
	saved.Cause = machine.SetExcCode(saved.Cause, machine.ExcInterrupt)
	saved.Cause |= uint32(1) << (8 + termLine)

	outcome := trap.Dispatch(n, &saved)
	assert.Equal(t, sched.OutcomeResume, outcome)
	assert.Equal(t, uint32(0x5), writer.State.V0())
	assert.Equal(t, 0, n.SoftBlockedCount)
	assert.Equal(t, uint32(0x1), fw.DeviceRegs().Regs[termLine-3][termDev][machine.FieldData1], "transmit command is ACKed")
}
