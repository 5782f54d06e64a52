package scheduler

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TaskFn is the function signature for scheduled tasks.
type TaskFn func()

// TaskInfo describes a registered task for the inspector API.
type TaskInfo struct {
	Name     string        `json:"name"`
	Interval time.Duration `json:"interval_ns"`
	Repeat   bool          `json:"repeat"`
	Runs     int64         `json:"runs"`
	Panics   int64         `json:"panics"`
	LastRun  time.Time     `json:"last_run"`
}

// Scheduler runs named periodic and one-shot tasks off the arena loop, e.g. respawn
// checks and stats logging. A panicking task is logged and keeps its schedule.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*task
	logger *zap.Logger
	stopCh chan struct{}
}

type task struct {
	name     string
	interval time.Duration
	repeat   bool
	ticker   *time.Ticker
	timer    *time.Timer
	stopCh   chan struct{}

	runs    atomic.Int64
	panics  atomic.Int64
	lastRun atomic.Int64 // unix nanos
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		tasks:  make(map[string]*task),
		stopCh: make(chan struct{}),
		logger: logger,
	}
}

// AddTicker registers fn to run every interval. A task with the same name is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)

	t := &task{
		name:     name,
		interval: interval,
		repeat:   true,
		ticker:   time.NewTicker(interval),
		stopCh:   make(chan struct{}),
	}
	s.tasks[name] = t

	go func() {
		defer t.ticker.Stop()
		for {
			select {
			case <-t.ticker.C:
				s.run(t, fn)
			case <-t.stopCh:
				return
			case <-s.stopCh:
				return
			}
		}
	}()
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
}

// AddDelay runs fn once after delay. A pending task with the same name is replaced.
func (s *Scheduler) AddDelay(name string, delay time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)

	t := &task{name: name, interval: delay, stopCh: make(chan struct{})}
	t.timer = time.AfterFunc(delay, func() {
		select {
		case <-s.stopCh:
			return
		default:
		}
		s.run(t, fn)
		s.mu.Lock()
		if s.tasks[name] == t {
			delete(s.tasks, name)
		}
		s.mu.Unlock()
	})
	s.tasks[name] = t
}

func (s *Scheduler) run(t *task, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			t.panics.Add(1)
			s.logger.Error("scheduler task panicked", zap.String("task", t.name), zap.Any("recover", r))
		}
	}()
	t.runs.Add(1)
	t.lastRun.Store(time.Now().UnixNano())
	fn()
}

// Remove stops and forgets a task by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)
}

func (s *Scheduler) removeLocked(name string) {
	t, ok := s.tasks[name]
	if !ok {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	close(t.stopCh)
	delete(s.tasks, name)
}

// Stop stops every task. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopCh:
		return
	default:
		close(s.stopCh)
	}
	for _, t := range s.tasks {
		if t.timer != nil {
			t.timer.Stop()
		}
	}
}

// ListTickers returns the names of the periodic tasks, sorted.
func (s *Scheduler) ListTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tasks))
	for name, t := range s.tasks {
		if t.repeat {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Tasks describes every registered task, sorted by name.
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		info := TaskInfo{
			Name:     t.name,
			Interval: t.interval,
			Repeat:   t.repeat,
			Runs:     t.runs.Load(),
			Panics:   t.panics.Load(),
		}
		if ns := t.lastRun.Load(); ns > 0 {
			info.LastRun = time.Unix(0, ns)
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
