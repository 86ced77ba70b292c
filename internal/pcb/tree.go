package pcb

// Parent returns p's parent, or nil if p is a root (the initial process).
func (p *PCB) Parent() *PCB { return p.parent }

// FirstChild returns p's first child in the sibling list, or nil.
func (p *PCB) FirstChild() *PCB { return p.firstChild }

// NextSibling returns p's right sibling, or nil.
func (p *PCB) NextSibling() *PCB { return p.rightSibling }

// Children calls fn for every direct child of p. Sibling order is
// unspecified; callers must not depend on it.
func (p *PCB) Children(fn func(*PCB)) {
	for c := p.firstChild; c != nil; c = c.rightSibling {
		fn(c)
	}
}

// InsertChild attaches child as a new child of parent, at the head of
// parent's sibling list (O(1)).
func InsertChild(parent, child *PCB) {
	child.parent = parent
	child.leftSibling = nil
	child.rightSibling = parent.firstChild
	if parent.firstChild != nil {
		parent.firstChild.leftSibling = child
	}
	parent.firstChild = child
}

// RemoveChild detaches child from its parent's sibling list. child.parent
// is cleared. O(1): no scan of the sibling list is required because the
// list is doubly linked.
func RemoveChild(child *PCB) {
	if child.leftSibling != nil {
		child.leftSibling.rightSibling = child.rightSibling
	} else if child.parent != nil {
		child.parent.firstChild = child.rightSibling
	}
	if child.rightSibling != nil {
		child.rightSibling.leftSibling = child.leftSibling
	}
	child.parent = nil
	child.leftSibling = nil
	child.rightSibling = nil
}
