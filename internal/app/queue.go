package app

// Queue serializes posted functions onto one goroutine. Hosts without their
// own event loop (the CLI, tests) use it as the workspace's Post function.
type Queue struct {
	ch chan func()
}

// NewQueue creates a queue buffering up to size pending functions.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan func(), size)}
}

// Post enqueues fn. It blocks when the buffer is full.
func (q *Queue) Post(fn func()) {
	q.ch <- fn
}

// Next runs the next posted function, waiting for one if necessary.
func (q *Queue) Next() {
	(<-q.ch)()
}

// Drain runs every function already posted without waiting.
func (q *Queue) Drain() int {
	n := 0
	for {
		select {
		case fn := <-q.ch:
			fn()
			n++
		default:
			return n
		}
	}
}
