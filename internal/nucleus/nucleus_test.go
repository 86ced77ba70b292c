package nucleus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisoputnfrba/go-nucleus/internal/config"
	"github.com/sisoputnfrba/go-nucleus/internal/machine"
	"github.com/sisoputnfrba/go-nucleus/internal/nlog"
	"github.com/sisoputnfrba/go-nucleus/internal/nucleus"
	"github.com/sisoputnfrba/go-nucleus/internal/pcb"
)

func newTestNucleus(t *testing.T, maxProc int) (*nucleus.Nucleus, *machine.Sim) {
	log, err := nlog.New("")
	require.NoError(t, err)
	cfg := config.Default()
	cfg.MaxProc = maxProc
	fw := machine.NewSim()
	return nucleus.New(cfg, fw, log), fw
}

func TestCreateChildAttachesTreeAndReadyQueue(t *testing.T) {
	n, _ := newTestNucleus(t, 4)
	root, err := n.CreateChild(nil, machine.State{PC: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n.ProcessCount)

	child, err := n.CreateChild(root, machine.State{PC: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n.ProcessCount)
	assert.Same(t, root, child.Parent())
	assert.Equal(t, 2, n.Ready.Len())
}

func TestCreateChildExhaustionReturnsError(t *testing.T) {
	n, _ := newTestNucleus(t, 1)
	_, err := n.CreateChild(nil, machine.State{}, nil)
	require.NoError(t, err)

	_, err = n.CreateChild(nil, machine.State{}, nil)
	assert.ErrorIs(t, err, pcb.ErrPoolExhausted)
}

func TestTerminateRecursesChildrenFirst(t *testing.T) {
	n, _ := newTestNucleus(t, 8)
	root, _ := n.CreateChild(nil, machine.State{}, nil)
	c1, _ := n.CreateChild(root, machine.State{}, nil)
	c2, _ := n.CreateChild(root, machine.State{}, nil)
	gc, _ := n.CreateChild(c1, machine.State{}, nil)
	require.Equal(t, 4, n.ProcessCount)

	n.Terminate(root)
	assert.Equal(t, 0, n.ProcessCount)
	assert.False(t, root.InUse())
	assert.False(t, c1.InUse())
	assert.False(t, c2.InUse())
	assert.False(t, gc.InUse())
}

func TestTerminateCurrentProcessClearsCurrent(t *testing.T) {
	n, _ := newTestNucleus(t, 2)
	root, _ := n.CreateChild(nil, machine.State{}, nil)
	n.Ready.RemoveHead()
	n.Current = root

	n.Terminate(root)
	assert.Nil(t, n.Current)
	assert.Equal(t, 0, n.ProcessCount)
}

func TestTerminateBlockedOnGeneralSemaphoreRestoresCount(t *testing.T) {
	n, _ := newTestNucleus(t, 2)
	p, _ := n.CreateChild(nil, machine.State{}, nil)
	n.Ready.RemoveHead()

	var sem int32 = -1 // one waiter already blocked
	n.ASL.InsertBlocked(&sem, p)

	n.Terminate(p)
	assert.Equal(t, int32(0), sem, "terminating a blocked waiter restores the count P took")
}

func TestChargeElapsedAccumulatesAndResnapshots(t *testing.T) {
	n, fw := newTestNucleus(t, 2)
	p, _ := n.CreateChild(nil, machine.State{}, nil)
	n.StartTOD = 0

	fw.Advance(3 * time.Millisecond)
	n.ChargeElapsed(p, n.FW.TOD())
	assert.Equal(t, 3*time.Millisecond, p.CPUTime)

	fw.Advance(2 * time.Millisecond)
	n.ChargeElapsed(p, n.FW.TOD())
	assert.Equal(t, 5*time.Millisecond, p.CPUTime)
}

func TestSnapshotReflectsCounters(t *testing.T) {
	n, _ := newTestNucleus(t, 4)
	n.CreateChild(nil, machine.State{}, nil)
	n.CreateChild(nil, machine.State{}, nil)
	n.Current = n.Ready.RemoveHead()

	snap := n.Snapshot()
	assert.Equal(t, 2, snap.ProcessCount)
	assert.Equal(t, 1, snap.ReadyLen)
	assert.Equal(t, n.Current.Slot, snap.CurrentSlot)
}

func TestPanicLatchesFirstReasonOnly(t *testing.T) {
	n, _ := newTestNucleus(t, 2)
	n.Panic(nucleus.ReasonDeadlock, "first")
	n.Panic(nucleus.ReasonInvariant, "second")

	ev := n.Panicked()
	require.NotNil(t, ev)
	assert.Equal(t, nucleus.ReasonDeadlock, ev.Reason)
	assert.Equal(t, "first", ev.Detail)
}
