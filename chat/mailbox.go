package chat

// mailbox is an unbounded FIFO inbox owned by one actor.
//
// Senders hand values to a pump goroutine over an unbuffered channel, so a
// send returns as soon as the value is queued and values from one sender
// are received in the order they were sent. The queue grows as needed,
// which keeps cyclic sends (room to session to room) from deadlocking.
type mailbox[T any] struct {
	in   chan T
	out  chan T
	done chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	m := &mailbox[T]{
		in:   make(chan T),
		out:  make(chan T),
		done: make(chan struct{}),
	}
	go m.pump()
	return m
}

func (m *mailbox[T]) pump() {
	var queue []T
	var zero T
	for {
		// A nil channel blocks, so out is only selectable with a value queued.
		var out chan T
		var next T
		if len(queue) > 0 {
			out = m.out
			next = queue[0]
		}

		select {
		case v := <-m.in:
			queue = append(queue, v)
		case out <- next:
			queue[0] = zero
			queue = queue[1:]
		case <-m.done:
			return
		}
	}
}

// send enqueues v. It returns false once the owner has stopped.
func (m *mailbox[T]) send(v T) bool {
	select {
	case <-m.done:
		return false
	default:
	}

	select {
	case m.in <- v:
		return true
	case <-m.done:
		return false
	}
}

// receive blocks until the next value is available. Only the owner calls it.
func (m *mailbox[T]) receive() T {
	return <-m.out
}

// close stops the mailbox and drops anything still queued. Only the owner
// calls it, once, when its loop exits.
func (m *mailbox[T]) close() {
	close(m.done)
}

// ask sends the request built around a reply channel and waits for the
// answer. ok is false if the actor stopped before answering.
func ask[T, R any](m *mailbox[T], request func(reply chan<- R) T) (r R, ok bool) {
	reply := make(chan R, 1)
	if !m.send(request(reply)) {
		return r, false
	}

	select {
	case r = <-reply:
		return r, true
	case <-m.done:
		// The answer may have been written just before the actor stopped.
		select {
		case r = <-reply:
			return r, true
		default:
			return r, false
		}
	}
}
