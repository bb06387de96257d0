package collector

import (
	"sync/atomic"

	"github.com/xping/xping-go/telemetry"
)

// executionQueue is a lock-free multi-producer multi-consumer linked
// queue (Michael & Scott construction) holding buffered executions.
//
// Enqueue is the hot path: every test completion on every worker lands
// here. Dequeue happens on the single flush goroutine, but the structure
// tolerates concurrent dequeuers (final flush can race a timer flush).
type executionQueue struct {
	head atomic.Pointer[queueNode]
	tail atomic.Pointer[queueNode]
	size atomic.Int64
}

type queueNode struct {
	value *telemetry.TestExecution
	next  atomic.Pointer[queueNode]
}

func newExecutionQueue() *executionQueue {
	q := &executionQueue{}
	sentinel := &queueNode{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// enqueue appends a value. Lock-free: contending producers retry the
// tail CAS, and a stalled producer's half-finished append is completed
// by whoever observes it.
func (q *executionQueue) enqueue(v *telemetry.TestExecution) {
	n := &queueNode{value: v}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// Tail is lagging; help it forward and retry
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			q.size.Add(1)
			return
		}
	}
}

// dequeue removes and returns the oldest value, or (nil, false) when the
// queue is empty.
func (q *executionQueue) dequeue() (*telemetry.TestExecution, bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if head == tail {
			if next == nil {
				return nil, false
			}
			// Tail lagging behind an in-flight enqueue; help it forward
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		v := next.value
		if q.head.CompareAndSwap(head, next) {
			next.value = nil // release for GC; next is the new sentinel
			q.size.Add(-1)
			return v, true
		}
	}
}

// len returns the approximate queue length. The counter trails the
// structural CAS by a few instructions, so a reader racing producers can
// observe a value off by the number of in-flight operations.
func (q *executionQueue) len() int64 {
	if n := q.size.Load(); n > 0 {
		return n
	}
	return 0
}
