// Package sim provides the cooperative virtual-time scheduler that drives
// the simulation.
//
// An Env owns a single simulated clock and a min-heap of wake-ups keyed by
// (time, insertion sequence). Each process is a named resumable task running
// in its own goroutine, but only one task executes at a time: the scheduler
// resumes a task, the task runs until its next Sleep call, and control
// returns to the scheduler. There is no preemption and no locking; processes
// may freely mutate shared state between suspension points.
//
// Ties at the same simulated time resolve by insertion sequence, so two
// processes waking on the same day run in the order their sleeps were
// queued. Spawn order therefore fixes the relative order of processes with
// identical cadences, which keeps runs reproducible.
package sim
