// Package pcb implements the nucleus's process control block pool: a
// statically sized bank of process records, the circular doubly-linked
// queue primitive used for both the ready queue and every semaphore's
// waiter queue, and the parent/child/sibling process tree.
//
// PCBs are never copied once allocated. Every external holder of a PCB
// keeps a *PCB into the pool's backing array; the pool is the single
// owner of that storage.
package pcb

import (
	"errors"
	"time"

	"github.com/sisoputnfrba/go-nucleus/internal/machine"
)

// ErrPoolExhausted is returned by AllocPcb when the free pool is empty.
var ErrPoolExhausted = errors.New("pcb: pool exhausted")

// SupportData is opaque to the nucleus; it is only threaded through the
// PCB on behalf of the support layer.
type SupportData struct {
	ExceptState   [2]machine.State
	ExceptContext [2]machine.ContextDescriptor
}

// PCB is one process control block.
type PCB struct {
	// queue links (ready queue or a semaphore's waiter queue)
	prev, next *PCB

	// process tree
	parent, firstChild, leftSibling, rightSibling *PCB

	// Processor state snapshot.
	State machine.State

	// CPUTime is the accumulated CPU time charged to this process.
	CPUTime time.Duration

	// SemAdd is non-nil iff this PCB is on some descriptor's waiter
	// queue; it then points at the semaphore value that descriptor is
	// keyed on.
	SemAdd *int32

	// Support is the opaque support-structure pointer used by
	// pass-up-or-die; nil if none was registered.
	Support *SupportData

	// Slot is this PCB's stable index into the owning Pool, used as a
	// handle in diagnostics; it never changes across alloc/free cycles.
	Slot int

	inUse bool
}

// Pool is the statically sized bank of PCBs.
type Pool struct {
	procs    []PCB
	freeHead *PCB // free list threaded through next; prev unused while free
}

// NewPool allocates a pool of exactly n PCBs, all initially free.
func NewPool(n int) *Pool {
	p := &Pool{procs: make([]PCB, n)}
	for i := range p.procs {
		p.procs[i].Slot = i
		p.freePush(&p.procs[i])
	}
	return p
}

func (p *Pool) freePush(pc *PCB) {
	pc.next = p.freeHead
	p.freeHead = pc
}

// AllocPcb returns a zero-initialized PCB from the free pool, or
// ErrPoolExhausted if none remain.
func (p *Pool) AllocPcb() (*PCB, error) {
	if p.freeHead == nil {
		return nil, ErrPoolExhausted
	}
	pc := p.freeHead
	p.freeHead = pc.next
	slot := pc.Slot
	*pc = PCB{Slot: slot, inUse: true}
	return pc, nil
}

// FreePcb returns pc to the free pool. The caller must have already
// detached pc from every queue and from the process tree.
func (p *Pool) FreePcb(pc *PCB) {
	slot := pc.Slot
	*pc = PCB{Slot: slot}
	p.freePush(pc)
}

// InUse reports whether pc is currently allocated (not on the free list,
// not the zero value of a freed slot). Used by tests and diagnostics.
func (pc *PCB) InUse() bool { return pc.inUse }

// Len returns the pool's total (static) capacity.
func (p *Pool) Len() int { return len(p.procs) }

// Free returns the number of PCBs currently on the free list.
func (p *Pool) Free() int {
	n := 0
	for pc := p.freeHead; pc != nil; pc = pc.next {
		n++
	}
	return n
}
