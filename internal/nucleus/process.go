package nucleus

import (
	"github.com/sisoputnfrba/go-nucleus/internal/machine"
	"github.com/sisoputnfrba/go-nucleus/internal/pcb"
)

// CreateChild allocates a PCB, initializes it from initial/support,
// attaches it as a child of parent (or makes it a root if parent is
// nil, for the initial process), pushes it onto the ready queue, and
// increments ProcessCount. Matches SYS1's CREATE_PROCESS effect.
func (n *Nucleus) CreateChild(parent *pcb.PCB, initial machine.State, support *pcb.SupportData) (*pcb.PCB, error) {
	p, err := n.Pool.AllocPcb()
	if err != nil {
		return nil, err
	}
	p.State = initial
	p.Support = support
	if parent != nil {
		pcb.InsertChild(parent, p)
	}
	n.Ready.Insert(p)
	n.ProcessCount++
	return p, nil
}

// Terminate recursively terminates the subtree rooted at target, its
// children first, then target itself, matching SYS2's TERMINATE_PROCESS
// detail. It is the single implementation shared by SYS2 and
// pass-up-or-die's no-support-structure path.
func (n *Nucleus) Terminate(target *pcb.PCB) {
	// Recurse over children first. Children() walks target's sibling
	// list; RemoveChild (called inside terminateOne for every target
	// that has a parent) mutates that same list, so we
	// snapshot the child pointers before recursing.
	var children []*pcb.PCB
	target.Children(func(c *pcb.PCB) { children = append(children, c) })
	for _, c := range children {
		n.Terminate(c)
	}
	n.terminateOne(target)
}

// terminateOne detaches target from whatever holds it (current-process
// slot, a waiter queue, or the ready queue), restores semaphore counting
// semantics or the soft-blocked counter as appropriate, frees the PCB,
// and decrements ProcessCount.
func (n *Nucleus) terminateOne(target *pcb.PCB) {
	switch {
	case target == n.Current:
		if target.Parent() != nil {
			pcb.RemoveChild(target)
		}
		n.Current = nil

	case target.SemAdd != nil:
		semAdd := target.SemAdd
		isDevice := n.isDevSem(semAdd)
		n.ASL.OutBlocked(target)
		if isDevice {
			n.SoftBlockedCount--
		} else {
			*semAdd++
		}
		if target.Parent() != nil {
			pcb.RemoveChild(target)
		}

	default:
		n.Ready.Remove(target)
		if target.Parent() != nil {
			pcb.RemoveChild(target)
		}
	}

	n.Pool.FreePcb(target)
	n.ProcessCount--
}

// isDevSem reports whether semAdd is one of the device/pseudo-clock
// semaphores owned by this nucleus's DevSem table (as opposed to a
// general-purpose semaphore supplied by a process).
func (n *Nucleus) isDevSem(semAdd *int32) bool {
	for i := range n.DevSem {
		if &n.DevSem[i] == semAdd {
			return true
		}
	}
	return false
}
