package submit

import "time"

// Scheduler runs fn once after d. It backs the submitter re-enable timer.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, fn func())

// AfterFunc implements Scheduler.
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) { fn(d, f) }

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
