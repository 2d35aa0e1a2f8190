package clock

import (
	"sync"
	"time"
)

// Clock отдаёт текущее время. Подменяется в тестах.
type Clock interface {
	Now() time.Time
}

type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

// Fixed всегда возвращает установленное время, пока его не сдвинут через Set или Advance.
type Fixed struct {
	mtx sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.now
}

func (f *Fixed) Set(now time.Time) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.now = now
}

func (f *Fixed) Advance(d time.Duration) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.now = f.now.Add(d)
}
