package sim

import (
	"container/heap"
)

// wakeup is a scheduled resumption of a process.
type wakeup struct {
	at   float64
	seq  uint64
	proc *Process
}

// wakeQueue is a min-heap ordered by (at, seq).
type wakeQueue []wakeup

func (q wakeQueue) Len() int { return len(q) }
func (q wakeQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q wakeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *wakeQueue) Push(x any)   { *q = append(*q, x.(wakeup)) }
func (q *wakeQueue) Pop() any {
	old := *q
	n := len(old)
	w := old[n-1]
	*q = old[:n-1]
	return w
}

// Env is the simulation environment: one clock, one wake-up queue.
// It is not safe for concurrent use; all Spawn calls must happen either
// before Run or from within a running process.
type Env struct {
	now   float64
	seq   uint64
	queue wakeQueue
	procs []*Process

	// OnAdvance, when non-nil, is invoked every time the clock moves,
	// before the woken process resumes. The engine uses it to mirror the
	// clock into shared state.
	OnAdvance func(now float64)
}

// NewEnv creates an environment with the clock at zero.
func NewEnv() *Env {
	return &Env{}
}

// Now returns the current simulated time in days.
func (e *Env) Now() float64 { return e.now }

// Process is a named cooperative task. Its body function runs in a
// dedicated goroutine but executes only between the scheduler's resume
// and the process's next Sleep.
type Process struct {
	name string
	env  *Env
	body func(*Process)

	resume  chan bool
	yielded chan struct{}
	started bool
	done    bool
}

// Name returns the process name given at Spawn.
func (p *Process) Name() string { return p.name }

// Env returns the owning environment.
func (p *Process) Env() *Env { return p.env }

// Now returns the current simulated time.
func (p *Process) Now() float64 { return p.env.now }

// Spawn registers a process whose first activation is scheduled at the
// current simulated time. The body must structure every wait as a Sleep
// call and must return promptly once Sleep reports false.
func (e *Env) Spawn(name string, body func(*Process)) *Process {
	p := &Process{
		name:    name,
		env:     e,
		body:    body,
		resume:  make(chan bool),
		yielded: make(chan struct{}),
	}
	e.procs = append(e.procs, p)
	e.schedule(e.now, p)
	return p
}

// schedule queues a wake-up for p at time at.
func (e *Env) schedule(at float64, p *Process) {
	e.seq++
	heap.Push(&e.queue, wakeup{at: at, seq: e.seq, proc: p})
}

// Sleep suspends the calling process for delta simulated days and returns
// true when it is resumed. A false return means the run is over and the
// process must return without touching the environment again. Negative
// deltas are treated as zero.
func (p *Process) Sleep(delta float64) bool {
	if delta < 0 {
		delta = 0
	}
	p.env.schedule(p.env.now+delta, p)
	p.yielded <- struct{}{}
	return <-p.resume
}

// activate hands control to p and blocks until it suspends or finishes.
func (e *Env) activate(p *Process, keepRunning bool) {
	if !p.started {
		p.started = true
		go func() {
			p.body(p)
			p.done = true
			p.yielded <- struct{}{}
		}()
		<-p.yielded
		return
	}
	p.resume <- keepRunning
	<-p.yielded
}

// Run executes the simulation until the clock would pass the horizon, then
// shuts every process down. On return the clock reads exactly until.
func (e *Env) Run(until float64) {
	for e.queue.Len() > 0 {
		if e.queue[0].at > until {
			break
		}
		w := heap.Pop(&e.queue).(wakeup)
		if w.proc.done {
			continue
		}
		if w.at > e.now {
			e.now = w.at
			if e.OnAdvance != nil {
				e.OnAdvance(e.now)
			}
		}
		e.activate(w.proc, true)
	}

	if e.now < until {
		e.now = until
		if e.OnAdvance != nil {
			e.OnAdvance(e.now)
		}
	}

	// Unwind processes still parked in Sleep. Processes whose first
	// activation never came due are simply abandoned.
	for e.queue.Len() > 0 {
		w := heap.Pop(&e.queue).(wakeup)
		if w.proc.done || !w.proc.started {
			w.proc.done = true
			continue
		}
		e.activate(w.proc, false)
	}
}
