package pcb

// Queue is a circular doubly-linked process queue with a tail pointer:
// insertion at the tail, the owner holds only the tail (tail.next is
// the head), and removing the tail or the last element updates/nils
// the tail pointer.
type Queue struct {
	tail *PCB
}

// IsEmpty reports whether the queue holds no PCBs.
func (q *Queue) IsEmpty() bool { return q.tail == nil }

// Insert appends p to the tail of the queue.
func (q *Queue) Insert(p *PCB) {
	if q.tail == nil {
		p.next = p
		p.prev = p
		q.tail = p
		return
	}
	head := q.tail.next
	p.prev = q.tail
	p.next = head
	q.tail.next = p
	head.prev = p
	q.tail = p
}

// Head returns the PCB at the head of the queue without removing it, or
// nil if the queue is empty.
func (q *Queue) Head() *PCB {
	if q.tail == nil {
		return nil
	}
	return q.tail.next
}

// RemoveHead removes and returns the PCB at the head of the queue, or nil
// if the queue is empty.
func (q *Queue) RemoveHead() *PCB {
	if q.tail == nil {
		return nil
	}
	return q.Remove(q.tail.next)
}

// Remove detaches p from the queue. p must currently be a member of q;
// behavior is undefined otherwise. When p is the queue's only member the
// tail pointer becomes nil.
func (q *Queue) Remove(p *PCB) *PCB {
	if p.next == p {
		// sole element
		q.tail = nil
	} else {
		p.prev.next = p.next
		p.next.prev = p.prev
		if q.tail == p {
			q.tail = p.prev
		}
	}
	p.next = nil
	p.prev = nil
	return p
}

// Each calls fn for every PCB in the queue, head first, in FIFO order.
// fn must not mutate the queue.
func (q *Queue) Each(fn func(*PCB)) {
	if q.tail == nil {
		return
	}
	p := q.tail.next
	for {
		fn(p)
		if p == q.tail {
			return
		}
		p = p.next
	}
}

// Len counts the members of the queue by walking it; intended for tests
// and diagnostics, not hot paths.
func (q *Queue) Len() int {
	n := 0
	q.Each(func(*PCB) { n++ })
	return n
}
