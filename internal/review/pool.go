package review

import "sync"

// Pool runs tasks with a fixed concurrency limit. Zero or negative limits run
// tasks one at a time.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewPool creates a pool admitting at most limit concurrent tasks.
func NewPool(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: make(chan struct{}, limit)}
}

// Go schedules fn, blocking until a slot is free.
func (p *Pool) Go(fn func()) {
	p.wg.Add(1)
	p.sem <- struct{}{}
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		fn()
	}()
}

// Wait blocks until every scheduled task finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
