package manager

// Record is the storage behind a Kind. Implementations embed Links, which
// carries the registrar reference list maintained by this package.
type Record[I any] interface {
	// Add stores item.
	Add(item I)
	// Remove drops item. Removing an item that was never added is a violation.
	Remove(item I)
	// TransferAll moves every item into target, leaving the receiver empty.
	TransferAll(target Record[I])

	links() *Links[I]
}

// Destroyer is implemented by records that need to release resources when
// their last registrar detaches or their contents are transferred away.
type Destroyer interface {
	Destroy()
}

// Links is the registrar bookkeeping of a Record. Embed it by value.
type Links[I any] struct {
	head      *Registrar[I]
	destroyed bool
}

func (l *Links[I]) links() *Links[I] {
	return l
}

// Destroyed reports whether the record has been destroyed.
func (l *Links[I]) Destroyed() bool {
	return l.destroyed
}

// References returns the number of registrars linked to the record.
func (l *Links[I]) References() int {
	n := 0
	for r := l.head; r != nil; r = r.next {
		n++
	}
	return n
}

func (l *Links[I]) push(r *Registrar[I]) {
	r.next = l.head
	l.head = r
	r.linked = true
}

func (l *Links[I]) unlink(r *Registrar[I]) bool {
	if l.head == r {
		l.head = r.next
		r.next, r.linked = nil, false
		return true
	}
	for prev := l.head; prev != nil; prev = prev.next {
		if prev.next == r {
			prev.next = r.next
			r.next, r.linked = nil, false
			return true
		}
	}
	return false
}

func (l *Links[I]) empty() bool {
	return l.head == nil
}
