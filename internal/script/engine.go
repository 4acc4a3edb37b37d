package script

import (
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/quill/internal/dispatch"
)

// Engine owns one Lua state on one goroutine.
//
// The LState is not goroutine-safe, so every touch of it (loading scripts,
// registering handlers, firing events) happens as a job on the engine
// goroutine. Fire never blocks the caller.
type Engine struct {
	queue   *dispatch.Queue
	onError func(err error)

	jobs      chan func()
	done      chan struct{}
	closeOnce sync.Once

	// Engine-goroutine state. Never touched from outside jobs.
	state    *lua.LState
	handlers map[string][]*lua.LFunction
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithErrorHandler routes hook failures to h on the drain-loop goroutine.
func WithErrorHandler(h func(error)) EngineOption {
	return func(e *Engine) {
		e.onError = h
	}
}

// NewEngine creates the Lua state and starts the engine goroutine.
func NewEngine(queue *dispatch.Queue, opts ...EngineOption) *Engine {
	e := &Engine{
		queue:    queue,
		jobs:     make(chan func(), 64),
		done:     make(chan struct{}),
		handlers: make(map[string][]*lua.LFunction),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.state = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(e.state)
	e.state.SetGlobal("on", e.state.NewFunction(e.luaOn))

	go e.loop()
	return e
}

// openSafeLibraries opens base, table, string, and math only. io, os,
// debug, and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// luaOn implements the on(event, fn) global. Only callable while a script
// runs, which means only on the engine goroutine.
func (e *Engine) luaOn(L *lua.LState) int {
	event := L.CheckString(1)
	fn := L.CheckFunction(2)
	e.handlers[event] = append(e.handlers[event], fn)
	return 0
}

// loop executes jobs until Close.
func (e *Engine) loop() {
	for {
		select {
		case job := <-e.jobs:
			job()
		case <-e.done:
			e.state.Close()
			return
		}
	}
}

// submit runs job on the engine goroutine, returning false after Close.
func (e *Engine) submit(job func()) bool {
	select {
	case <-e.done:
		return false
	case e.jobs <- job:
		return true
	}
}

// LoadFile runs a script file, blocking until it finishes. Handlers it
// registers receive later events.
func (e *Engine) LoadFile(path string) error {
	return e.load(func() error { return e.state.DoFile(path) })
}

// LoadString runs inline script source, blocking until it finishes.
func (e *Engine) LoadString(src string) error {
	return e.load(func() error { return e.state.DoString(src) })
}

func (e *Engine) load(do func() error) error {
	result := make(chan error, 1)
	ok := e.submit(func() {
		result <- do()
	})
	if !ok {
		return ErrClosed
	}
	select {
	case err := <-result:
		return err
	case <-e.done:
		return ErrClosed
	}
}

// Fire invokes every handler registered for event with payload as a table
// argument. Returns false after Close. Handler failures are routed to the
// error handler; one broken handler does not stop the rest.
func (e *Engine) Fire(event string, payload map[string]string) bool {
	return e.submit(func() {
		fns := e.handlers[event]
		if len(fns) == 0 {
			return
		}

		for _, fn := range fns {
			tbl := e.state.NewTable()
			for k, v := range payload {
				tbl.RawSetString(k, lua.LString(v))
			}
			err := e.state.CallByParam(lua.P{
				Fn:      fn,
				NRet:    0,
				Protect: true,
			}, tbl)
			if err != nil {
				e.reportError(&HookError{Event: event, Err: err})
			}
		}
	})
}

// HandlerCount returns how many handlers are registered for event.
func (e *Engine) HandlerCount(event string) int {
	result := make(chan int, 1)
	ok := e.submit(func() {
		result <- len(e.handlers[event])
	})
	if !ok {
		return 0
	}
	select {
	case n := <-result:
		return n
	case <-e.done:
		return 0
	}
}

// reportError runs on the engine goroutine and hands the error to the
// drain loop.
func (e *Engine) reportError(err error) {
	if e.onError == nil {
		return
	}
	e.queue.PushAction(func() {
		e.onError(err)
	})
}

// Close shuts the engine down. Idempotent. Pending jobs are dropped.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
	})
}
