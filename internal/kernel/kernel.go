// Package kernel is a minimal discrete-event kernel: a simulated clock, a
// time-ordered event queue, and cooperatively scheduled processes. Process
// bodies run on goroutines, but the kernel enforces a strict handoff so that
// exactly one process executes at any moment; concurrency between processes
// is interleaving in simulated time, never parallelism.
//
// Suspension points are first-class: a process suspends only by waiting on an
// Event (directly or through Timeout), and resumes when the kernel pops that
// event off the queue. Events scheduled for the same instant fire in the
// order they were scheduled.
package kernel

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
)

// Interrupted is delivered at a process's current suspension point when
// another party interrupts it.
type Interrupted struct {
	Cause error
}

// Error implements the error interface.
func (i *Interrupted) Error() string {
	if i.Cause != nil {
		return fmt.Sprintf("kernel: process interrupted: %v", i.Cause)
	}
	return "kernel: process interrupted"
}

// Unwrap exposes the interrupt cause.
func (i *Interrupted) Unwrap() error { return i.Cause }

// IsInterrupted reports whether err is (or wraps) a process interruption.
func IsInterrupted(err error) bool {
	var target *Interrupted
	return errors.As(err, &target)
}

// Func is a process body. It runs to completion between suspensions; any
// non-nil, non-interrupt error it returns aborts the kernel run and
// propagates to the Run caller.
type Func func(*Proc) error

// Kernel owns the simulated clock and the pending event queue. A Kernel is
// not safe for concurrent use; all interaction happens from the goroutine
// driving Run and from process bodies the kernel itself resumes.
type Kernel struct {
	now     float64
	seq     int64
	queue   eventQueue
	park    chan parkReport
	current *Proc
	failure error
}

type parkReport struct {
	proc     *Proc
	finished bool
	err      error
}

// New returns a kernel with the clock at zero and an empty queue.
func New() *Kernel {
	return &Kernel{park: make(chan parkReport)}
}

// Now returns the current simulated instant.
func (k *Kernel) Now() float64 { return k.now }

// Event is a one-shot occurrence processes can wait on. The zero value is not
// usable; obtain events from NewEvent, Timeout, or Proc.Done.
type Event struct {
	k         *Kernel
	scheduled bool
	triggered bool
	err       error
	waiters   []*Proc
}

// NewEvent returns an untriggered event bound to the kernel.
func (k *Kernel) NewEvent() *Event {
	return &Event{k: k}
}

// Triggered reports whether the event has fired.
func (e *Event) Triggered() bool { return e.triggered }

// Err returns the failure the event fired with, if any.
func (e *Event) Err() error { return e.err }

// Succeed schedules the event to fire at the current instant.
func (e *Event) Succeed() error {
	return e.trigger(nil)
}

// Fail schedules the event to fire at the current instant, delivering err to
// every waiter.
func (e *Event) Fail(err error) error {
	if err == nil {
		return fmt.Errorf("kernel: Fail requires a non-nil error")
	}
	return e.trigger(err)
}

func (e *Event) trigger(err error) error {
	if e.triggered || e.scheduled {
		return fmt.Errorf("kernel: event already triggered")
	}
	e.err = err
	e.k.schedule(e, 0)
	return nil
}

func (e *Event) detach(p *Proc) {
	for i, w := range e.waiters {
		if w == p {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			return
		}
	}
}

// Proc is the kernel-side handle for one running process.
type Proc struct {
	k        *Kernel
	name     string
	owner    string
	resume   chan error
	waiting  *Event
	done     *Event
	finished bool
	err      error
}

// Name returns the process name given at spawn.
func (p *Proc) Name() string { return p.name }

// Owner returns the owner identity given at spawn.
func (p *Proc) Owner() string { return p.owner }

// Kernel returns the kernel the process runs on.
func (p *Proc) Kernel() *Kernel { return p.k }

// Now returns the current simulated instant.
func (p *Proc) Now() float64 { return p.k.now }

// Done returns the completion event other processes can wait on. It succeeds
// on normal return and fails with the interrupt when the process is cancelled.
func (p *Proc) Done() *Event { return p.done }

// Finished reports whether the process body has returned.
func (p *Proc) Finished() bool { return p.finished }

// Spawn registers a new process whose body starts at the current instant.
// It fails when the body is nil or the kernel has already failed; scheduling
// errors are surfaced to the caller, never retried.
func (k *Kernel) Spawn(name, owner string, fn Func) (*Proc, error) {
	if fn == nil {
		return nil, fmt.Errorf("kernel: process %s has no body", name)
	}
	if k.failure != nil {
		return nil, fmt.Errorf("kernel: cannot spawn %s after kernel failure: %w", name, k.failure)
	}
	p := &Proc{
		k:      k,
		name:   name,
		owner:  owner,
		resume: make(chan error),
	}
	p.done = k.NewEvent()
	start := k.NewEvent()
	start.waiters = append(start.waiters, p)
	p.waiting = start
	k.schedule(start, 0)
	go p.body(fn)
	return p, nil
}

func (p *Proc) body(fn Func) {
	// An interrupt can land while the process is still parked on its start
	// event; the cause arrives through the first resume and the body must
	// not run.
	if cause := <-p.resume; cause != nil {
		p.finished = true
		p.err = cause
		p.k.park <- parkReport{proc: p, finished: true, err: cause}
		return
	}
	err := fn(p)
	p.finished = true
	p.err = err
	p.k.park <- parkReport{proc: p, finished: true, err: err}
}

// Wait suspends the process until the event fires. The returned error is the
// event's failure, or the interrupt delivered while parked.
func (p *Proc) Wait(ev *Event) error {
	if ev == nil {
		return fmt.Errorf("kernel: wait requires an event")
	}
	if ev.triggered {
		return ev.err
	}
	ev.waiters = append(ev.waiters, p)
	p.waiting = ev
	p.k.park <- parkReport{proc: p}
	cause := <-p.resume
	p.waiting = nil
	return cause
}

// Timeout suspends the process for d simulated units.
func (p *Proc) Timeout(d float64) error {
	if d < 0 || math.IsNaN(d) {
		return fmt.Errorf("kernel: timeout duration %v is invalid", d)
	}
	ev := p.k.NewEvent()
	p.k.schedule(ev, d)
	return p.Wait(ev)
}

// Interrupt cancels the process's current suspension, delivering an
// Interrupted error carrying cause at its park point. Interrupting a finished
// process is a no-op.
func (p *Proc) Interrupt(cause error) {
	if p.finished || p.waiting == nil {
		return
	}
	p.waiting.detach(p)
	p.waiting = nil
	wake := p.k.NewEvent()
	wake.err = &Interrupted{Cause: cause}
	wake.waiters = append(wake.waiters, p)
	p.waiting = wake
	p.k.schedule(wake, 0)
}

func (k *Kernel) schedule(ev *Event, delay float64) {
	ev.scheduled = true
	k.seq++
	heap.Push(&k.queue, &queued{at: k.now + delay, seq: k.seq, ev: ev})
}

// Run drains the event queue, advancing the clock to each event in turn. It
// returns the first process failure, leaving the clock where the failure
// occurred.
func (k *Kernel) Run() error {
	return k.RunUntil(math.Inf(1))
}

// RunUntil processes every event strictly before instant t, then advances
// the clock to t (or leaves it at the last event when the queue drains
// first).
func (k *Kernel) RunUntil(t float64) error {
	for k.queue.Len() > 0 {
		next := k.queue[0]
		if next.at >= t {
			k.now = t
			return nil
		}
		heap.Pop(&k.queue)
		k.now = next.at
		ev := next.ev
		ev.triggered = true
		waiters := ev.waiters
		ev.waiters = nil
		for _, p := range waiters {
			if err := k.resumeProc(p, ev.err); err != nil {
				return err
			}
		}
	}
	return nil
}

func (k *Kernel) resumeProc(p *Proc, cause error) error {
	k.current = p
	p.resume <- cause
	report := <-k.park
	k.current = nil
	if !report.finished {
		return nil
	}
	if report.err == nil {
		report.proc.done.err = nil
		k.schedule(report.proc.done, 0)
		return nil
	}
	if IsInterrupted(report.err) {
		// Benign cancellation: the process ends, the run continues.
		report.proc.done.err = report.err
		k.schedule(report.proc.done, 0)
		return nil
	}
	k.failure = report.err
	return report.err
}

type queued struct {
	at  float64
	seq int64
	ev  *Event
}

// eventQueue is a min-heap ordered by time, then scheduling sequence, giving
// FIFO behavior among events at the same instant.
type eventQueue []*queued

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*queued)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
