// Package asl implements the nucleus's Active Semaphore List: a sorted
// list of semaphore descriptors keyed by semaphore address, each owning
// one FIFO waiter queue, drawn from and returned to a private,
// statically sized free list.
package asl

import (
	"unsafe"

	"github.com/sisoputnfrba/go-nucleus/internal/pcb"
)

type key uintptr

const maxKey = key(^uintptr(0))

func keyOf(semAdd *int32) key {
	return key(uintptr(unsafe.Pointer(semAdd)))
}

// semd is one Active Semaphore List descriptor.
type semd struct {
	k        key
	semAdd   *int32
	waiting  pcb.Queue
	next     *semd // ASL order (ascending key) or free-list link
}

// ASL is the statically sized table of descriptors, two of which are
// permanent sentinels (head keyed at 0, tail keyed at the maximum
// representable address) bounding every search.
type ASL struct {
	table      []semd
	head, tail *semd
	freeHead   *semd
}

// New allocates an ASL with capacity for n semaphore descriptors in
// addition to the two sentinels, so n+2 entries total (typically 22
// descriptors for a 20-process pool).
func New(n int) *ASL {
	a := &ASL{table: make([]semd, n+2)}
	a.head = &a.table[0]
	a.tail = &a.table[1]
	a.head.k = 0
	a.tail.k = maxKey
	a.head.next = a.tail
	a.tail.next = nil

	for i := 2; i < len(a.table); i++ {
		a.freePush(&a.table[i])
	}
	return a
}

func (a *ASL) freePush(s *semd) {
	s.next = a.freeHead
	a.freeHead = s
}

func (a *ASL) freePop() *semd {
	if a.freeHead == nil {
		return nil
	}
	s := a.freeHead
	a.freeHead = s.next
	return s
}

// find walks from the head sentinel until the next descriptor's key is
// >= target, returning that descriptor and its predecessor. hit reports
// whether the returned descriptor's key equals target exactly.
func (a *ASL) find(k key) (prev, at *semd, hit bool) {
	prev = a.head
	at = a.head.next
	for at.k < k {
		prev = at
		at = at.next
	}
	return prev, at, at.k == k
}

// InsertBlocked finds or creates the descriptor for semAdd and appends p
// to its waiter queue, setting p.SemAdd. It returns true only if a new
// descriptor was needed and the free list was exhausted (the process is
// not blocked in that case; the caller must handle the failure).
func (a *ASL) InsertBlocked(semAdd *int32, p *pcb.PCB) (failed bool) {
	k := keyOf(semAdd)
	prev, at, hit := a.find(k)
	if !hit {
		nd := a.freePop()
		if nd == nil {
			return true
		}
		nd.k = k
		nd.semAdd = semAdd
		nd.waiting = pcb.Queue{}
		nd.next = at
		prev.next = nd
		at = nd
	}
	at.waiting.Insert(p)
	p.SemAdd = semAdd
	return false
}

// RemoveBlocked finds the descriptor for semAdd, dequeues its head PCB
// (clearing that PCB's SemAdd), and frees the descriptor if its waiter
// queue becomes empty. It returns the PCB, or nil if there is no
// descriptor for semAdd.
func (a *ASL) RemoveBlocked(semAdd *int32) *pcb.PCB {
	k := keyOf(semAdd)
	prev, at, hit := a.find(k)
	if !hit {
		return nil
	}
	p := at.waiting.RemoveHead()
	if p == nil {
		return nil
	}
	p.SemAdd = nil
	if at.waiting.IsEmpty() {
		prev.next = at.next
		a.freePush(at)
	}
	return p
}

// OutBlocked removes p from whatever descriptor's waiter queue currently
// holds it, per p.SemAdd, freeing the descriptor if it becomes empty. It
// returns p on success, or nil if p was not actually on the queue its
// SemAdd names (a caller error).
func (a *ASL) OutBlocked(p *pcb.PCB) *pcb.PCB {
	if p.SemAdd == nil {
		return nil
	}
	k := keyOf(p.SemAdd)
	prev, at, hit := a.find(k)
	if !hit {
		return nil
	}
	found := false
	at.waiting.Each(func(q *pcb.PCB) {
		if q == p {
			found = true
		}
	})
	if !found {
		return nil
	}
	at.waiting.Remove(p)
	p.SemAdd = nil
	if at.waiting.IsEmpty() {
		prev.next = at.next
		a.freePush(at)
	}
	return p
}

// HeadBlocked peeks at the head of semAdd's waiter queue without removing
// it, or nil if there is no descriptor for semAdd or its queue is empty.
func (a *ASL) HeadBlocked(semAdd *int32) *pcb.PCB {
	_, at, hit := a.find(keyOf(semAdd))
	if !hit {
		return nil
	}
	return at.waiting.Head()
}

// Len returns the number of non-sentinel descriptors currently on the
// ASL (i.e. currently-blocked-on semaphores), for tests and diagnostics.
func (a *ASL) Len() int {
	n := 0
	for s := a.head.next; s != a.tail; s = s.next {
		n++
	}
	return n
}

// FreeCount returns the number of descriptors currently on the free list.
func (a *ASL) FreeCount() int {
	n := 0
	for s := a.freeHead; s != nil; s = s.next {
		n++
	}
	return n
}

// CheckSorted reports whether the ASL is strictly sorted ascending by
// key and every descriptor on it has a non-empty waiter queue. Exported
// for tests.
func (a *ASL) CheckSorted() bool {
	prev := a.head
	for s := a.head.next; s != a.tail; s = s.next {
		if s.k <= prev.k {
			return false
		}
		if s.waiting.IsEmpty() {
			return false
		}
		prev = s
	}
	return true
}
