package trap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisoputnfrba/go-nucleus/internal/machine"
	"github.com/sisoputnfrba/go-nucleus/internal/pcb"
	"github.com/sisoputnfrba/go-nucleus/internal/sched"
	"github.com/sisoputnfrba/go-nucleus/internal/trap"
)

func TestPassUpOrDieWithSupportLoadsContext(t *testing.T) {
	n, fw := newTestNucleus(t)
	sup := &pcb.SupportData{}
	sup.ExceptContext[machine.PassUpGeneral] = machine.ContextDescriptor{SP: 0x7000, PC: 0x8000}
	p, _ := n.CreateChild(nil, machine.State{}, sup)
	n.Ready.RemoveHead()
	n.Current = p
	n.StartTOD = n.FW.TOD()

	saved := machine.State{PC: 0x333}
	outcome := trap.PassUpOrDie(n, machine.PassUpGeneral, &saved)

	assert.Equal(t, sched.OutcomeResume, outcome)
	assert.Equal(t, uint32(0x333), sup.ExceptState[machine.PassUpGeneral].PC)
	assert.Same(t, p, n.Current, "pass-up resumes the same process in the support layer's context")

	loaded, ok := fw.LastLoaded()
	require.True(t, ok)
	assert.Equal(t, uint32(0x8000), loaded.PC)
}

func TestPassUpOrDieWithoutSupportKillsSubtree(t *testing.T) {
	n, _ := newTestNucleus(t)
	parent, _ := n.CreateChild(nil, machine.State{}, nil)
	n.Ready.RemoveHead()
	child, _ := n.CreateChild(parent, machine.State{}, nil)
	n.Current = parent
	n.StartTOD = n.FW.TOD()

	saved := machine.State{}
	outcome := trap.PassUpOrDie(n, machine.PassUpGeneral, &saved)

	assert.Equal(t, sched.OutcomeHalt, outcome)
	assert.Nil(t, n.Current)
	assert.False(t, parent.InUse())
	assert.False(t, child.InUse())
}

func TestPassUpOrDieWithNoCurrentProcessPanics(t *testing.T) {
	n, fw := newTestNucleus(t)
	saved := machine.State{}
	outcome := trap.PassUpOrDie(n, machine.PassUpGeneral, &saved)
	assert.Equal(t, sched.OutcomePanic, outcome)
	assert.NotNil(t, fw.Panicked())
}
