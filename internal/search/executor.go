package search

import "sync"

// Executor runs callbacks on the goroutine that owns search state. Every
// Manager method must be called on that goroutine, and every asynchronous
// completion is posted back through the Executor before it touches state.
type Executor interface {
	Post(fn func())
}

// ExecutorFunc adapts a function to Executor
type ExecutorFunc func(fn func())

// Post implements Executor
func (f ExecutorFunc) Post(fn func()) { f(fn) }

// LoopExecutor owns a goroutine that runs posted callbacks in order.
// Used when there is no UI event loop to borrow.
type LoopExecutor struct {
	tasks chan func()
	quit  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewLoopExecutor starts the loop goroutine
func NewLoopExecutor() *LoopExecutor {
	e := &LoopExecutor{
		tasks: make(chan func(), 256),
		quit:  make(chan struct{}),
	}
	e.wg.Add(1)
	go e.run()
	return e
}

// Post queues fn; it is dropped once the executor is closed
func (e *LoopExecutor) Post(fn func()) {
	select {
	case <-e.quit:
	case e.tasks <- fn:
	}
}

// Call runs fn on the loop and waits for it. Must not be called from the loop.
func (e *LoopExecutor) Call(fn func()) {
	done := make(chan struct{})
	e.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
	case <-e.quit:
	}
}

// Close stops the loop; queued callbacks that have not started are dropped
func (e *LoopExecutor) Close() {
	e.once.Do(func() { close(e.quit) })
	e.wg.Wait()
}

func (e *LoopExecutor) run() {
	defer e.wg.Done()
	for {
		select {
		case fn := <-e.tasks:
			fn()
		case <-e.quit:
			return
		}
	}
}
