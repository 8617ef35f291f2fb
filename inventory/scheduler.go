package inventory

import (
	"sync"
	"time"
)

// Scheduler runs delayed tasks keyed by name. Scheduling a key replaces any
// task already pending for it, and a cancelled task never runs.
//
// Schedule, Cancel, CancelAll and Pending must be called with the locker held.
// Task bodies run with the locker held, and only if they are still the current
// task for their key at that point.
type Scheduler struct {
	locker sync.Locker
	tasks  map[string]*task
	seq    uint64
	wg     sync.WaitGroup
}

type task struct {
	id    uint64
	timer *time.Timer
}

func NewScheduler(locker sync.Locker) *Scheduler {
	return &Scheduler{
		locker: locker,
		tasks:  make(map[string]*task),
	}
}

func (s *Scheduler) Schedule(key string, d time.Duration, fn func()) {
	s.Cancel(key)

	s.seq++
	id := s.seq
	t := &task{id: id}

	s.wg.Add(1)
	t.timer = time.AfterFunc(d, func() {
		defer s.wg.Done()

		s.locker.Lock()
		defer s.locker.Unlock()

		if cur, ok := s.tasks[key]; !ok || cur.id != id {
			return
		}
		delete(s.tasks, key)
		fn()
	})
	s.tasks[key] = t
}

// Cancel reports whether a pending task for key was cancelled.
func (s *Scheduler) Cancel(key string) bool {
	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	delete(s.tasks, key)
	if t.timer.Stop() {
		s.wg.Done()
	}
	return true
}

func (s *Scheduler) CancelAll() {
	for key := range s.tasks {
		s.Cancel(key)
	}
}

func (s *Scheduler) Pending(key string) bool {
	_, ok := s.tasks[key]
	return ok
}

// Wait blocks until every scheduled task has run or been cancelled.
// It must be called without the locker held.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
