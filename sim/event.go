// sim/event.go
package sim

import "container/heap"

// action is a single scheduled unit of work: run fn once the clock reaches time.
// seq breaks ties between actions scheduled for the same time, in the order
// they were scheduled, giving the kernel its required FIFO tie-break (§4.1).
type action struct {
	time int64
	seq  uint64
	fn   func()
}

// actionQueue implements heap.Interface, ordered by (time, seq).
type actionQueue []*action

func (q actionQueue) Len() int { return len(q) }
func (q actionQueue) Less(i, j int) bool {
	if q[i].time != q[j].time {
		return q[i].time < q[j].time
	}
	return q[i].seq < q[j].seq
}
func (q actionQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *actionQueue) Push(x any) {
	*q = append(*q, x.(*action))
}

func (q *actionQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[0 : n-1]
	return item
}

// Event is a one-shot latch. A process suspends on an Event by calling
// Subscribe; the continuation runs exactly once, either immediately (if the
// Event already fired) or the moment Trigger is called. This is the Go
// stand-in for the source's simcpp20 coroutine await points: instead of
// suspending a stack, callers register the rest of their work as a closure.
type Event struct {
	fired bool
	subs  []func()
}

// NewEvent returns an unfired latch.
func NewEvent() *Event {
	return &Event{}
}

// Trigger fires the event, invoking every subscriber in registration order.
// Triggering an already-fired event is a no-op, matching the source's
// "manually-triggered latch" semantics for event().
func (e *Event) Trigger() {
	if e.fired {
		return
	}
	e.fired = true
	subs := e.subs
	e.subs = nil
	for _, fn := range subs {
		fn()
	}
}

// Subscribe registers fn to run when the event fires. If the event has
// already fired, fn runs immediately (synchronously, before Subscribe
// returns) rather than being lost.
func (e *Event) Subscribe(fn func()) {
	if e.fired {
		fn()
		return
	}
	e.subs = append(e.subs, fn)
}

// Processed reports whether the event has already fired. Used to
// distinguish, after an AnyOf resolves, which of its component events
// actually fired (e.g. travel-completed vs preempted).
func (e *Event) Processed() bool {
	return e.fired
}

// AnyOf returns an Event that fires the first time any of events fires.
// The component events remain independently observable via Processed.
func AnyOf(events ...*Event) *Event {
	out := NewEvent()
	for _, ev := range events {
		ev.Subscribe(out.Trigger)
	}
	return out
}

// AllOf returns an Event that fires once every one of events has fired.
func AllOf(events ...*Event) *Event {
	out := NewEvent()
	if len(events) == 0 {
		out.Trigger()
		return out
	}
	remaining := len(events)
	for _, ev := range events {
		ev.Subscribe(func() {
			remaining--
			if remaining == 0 {
				out.Trigger()
			}
		})
	}
	return out
}

// Kernel is the single-threaded cooperative scheduler: a monotonic integer
// clock in seconds driving a FIFO-tiebreaking min-heap of pending actions.
type Kernel struct {
	Clock   int64
	Horizon int64
	queue   actionQueue
	nextSeq uint64
}

// NewKernel creates a Kernel that will run until horizon (inclusive).
func NewKernel(horizon int64) *Kernel {
	return &Kernel{
		Horizon: horizon,
		queue:   make(actionQueue, 0),
	}
}

// Now returns the current simulated time in seconds.
func (k *Kernel) Now() int64 { return k.Clock }

// schedule pushes fn to run at the given absolute time, preserving FIFO
// order among same-tick actions via the monotonic seq counter.
func (k *Kernel) schedule(at int64, fn func()) {
	k.nextSeq++
	heap.Push(&k.queue, &action{time: at, seq: k.nextSeq, fn: fn})
}

// Timeout returns an Event that fires after dt simulated seconds.
func (k *Kernel) Timeout(dt int64) *Event {
	ev := NewEvent()
	k.schedule(k.Clock+dt, ev.Trigger)
	return ev
}

// At returns an Event that fires when the clock reaches the given absolute
// time (or immediately, at the next drain, if that time has passed).
func (k *Kernel) At(t int64) *Event {
	ev := NewEvent()
	if t <= k.Clock {
		t = k.Clock
	}
	k.schedule(t, ev.Trigger)
	return ev
}

// Spawn schedules fn to run at the current simulated time, after any actions
// already queued for this tick. Used to start a process without a delay.
func (k *Kernel) Spawn(fn func()) {
	k.schedule(k.Clock, fn)
}

// Run drains the action queue, advancing the clock to each action's
// scheduled time, until the queue is empty or the horizon is exceeded.
func (k *Kernel) Run() {
	for k.queue.Len() > 0 {
		next := heap.Pop(&k.queue).(*action)
		k.Clock = next.time
		if k.Clock > k.Horizon {
			break
		}
		next.fn()
	}
}
